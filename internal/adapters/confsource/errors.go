package confsource

import "fmt"

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("config fetch status %d: %s", e.Status, e.Body)
}
