package dynrecordsrepobridge

import (
	"context"
	"fmt"
	"testing"

	"github.com/jrazmi/formvault/bridge/scaffolding/errs"
	"github.com/jrazmi/formvault/core/collections"
	"github.com/jrazmi/formvault/core/repositories/dynrecordsrepo"
	"github.com/jrazmi/formvault/core/repositories/templatesrepo"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrCode
	}{
		{"record not found", dynrecordsrepo.ErrRecordNotFound, errs.NotFound},
		{"template not found", fmt.Errorf("resolve: %w", templatesrepo.ErrTemplateNotFound), errs.NotFound},
		{"invalid input", fmt.Errorf("field \"age\": %w", dynrecordsrepo.ErrInvalidInput), errs.InvalidArgument},
		{"shape conflict", fmt.Errorf("resolve collection: %w", collections.ErrShapeConflict), errs.Conflict},
		{"timeout is retryable", fmt.Errorf("insert: %w", context.DeadlineExceeded), errs.Unavailable},
		{"unknown stays internal", fmt.Errorf("pg: connection reset"), errs.InternalOnlyLog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toAppError(tt.err); got.Code != tt.want {
				t.Errorf("toAppError(%v) code = %v, want %v", tt.err, got.Code, tt.want)
			}
		})
	}
}
