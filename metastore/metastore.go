package metastore

import (
	"context"
	"errors"

	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/part"
)

var (
	logger = gologger.NewLogger()

	ErrNoNamespace = errors.New("part has no namespace")
)

type (
	// MetaStore is the run log of written output parts.
	MetaStore interface {
		// RecordParts stores the parts of one execution atomically.
		RecordParts(ctx context.Context, parts []part.Part) error
		// ListParts lists the parts of a namespace, oldest first.
		ListParts(ctx context.Context, namespace string) ([]part.Part, error)

		Shutdown(ctx context.Context) error
	}
)
