package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"tasker/internal/exitcode"
	"tasker/internal/service"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"validation", service.Errorf(service.KindValidation, "title required"), exitcode.UserError},
		{"rejected", service.Errorf(service.KindRejected, "bad username or password"), exitcode.UserError},
		{"not found", service.Errorf(service.KindNotFound, "not found"), exitcode.UserError},
		{"unauthorized", service.Errorf(service.KindUnauthorized, "Token has expired"), exitcode.AuthError},
		{"network", service.Errorf(service.KindNetwork, "network error"), exitcode.BackendError},
		{"malformed", service.Errorf(service.KindMalformedResponse, "bad body"), exitcode.BackendError},
		{"wrapped", fmt.Errorf("list: %w", service.ErrUnauthorized), exitcode.AuthError},
		{"plain", errors.New("boom"), exitcode.BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitcode.FromError(tt.err); got != tt.want {
				t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
