package cli

import (
	"fmt"

	"contentdesk/internal/format"
	"contentdesk/internal/mutate"
	"contentdesk/internal/records"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

var transitionShort = map[string]string{
	mutate.Claim:     "Claim a task as the current actor",
	mutate.Unclaim:   "Release a task's claim",
	mutate.Ready:     "Mark a task ready for confirmation",
	mutate.Unready:   "Clear a task's ready mark",
	mutate.Confirm:   "Confirm a task (admin)",
	mutate.Unconfirm: "Withdraw a task's confirmation (admin)",
	mutate.Post:      "Record a task as posted",
	mutate.Unpost:    "Clear a task's posted mark",
}

// newTaskTransitionCmd runs one lifecycle transition through a draft and saves the whole
// task. A transition the actor may not perform is reported with changed=false.
func newTaskTransitionCmd(app *App, name string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <task-id>",
		Short: transitionShort[name],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := sessionFor(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := findTask(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			d := mutate.NewDraft(*t, sess, app.cfg.Policy)
			res, err := d.Apply(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			changes, err := d.Save(ctxOf(cmd), s)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, c := range changes {
				if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, c.Type, store.TaskEntityID(t.ID), c.Payload); err != nil {
					return writeErr(cmd, err)
				}
			}
			app.log.Info("task transition", "task", t.ID, "transition", name, "actor", sess.ActorID, "changed", res.Changed)

			env := format.Wrap(records.ViewOf(d.Task()), fmt.Sprintf("contentdesk tasks show %d", t.ID)).
				WithMeta("transition", name).
				WithMeta("changed", res.Changed)
			if !res.Changed {
				env.Hints = append(env.Hints, fmt.Sprintf("%s had no effect for actor %s (already applied or not permitted)", name, sess.ActorID))
			}
			return writeOut(cmd, app, env)
		},
	}
}
