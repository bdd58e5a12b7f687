package cli

import (
	"errors"
	"fmt"
)

var errNoActor = errors.New("no current actor; run `contentdesk actors create --name ... --use` or `contentdesk actors use <actor-id>` (or pass --actor)")

type adminOnlyError struct {
	actorID string
	action  string
}

func (e adminOnlyError) Error() string {
	return fmt.Sprintf("permission denied: actor %s is not an admin (%s)", e.actorID, e.action)
}

func errAdminOnly(actorID, action string) error {
	return adminOnlyError{actorID: actorID, action: action}
}
