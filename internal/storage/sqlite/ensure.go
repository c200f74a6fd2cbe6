package sqlite

import "github.com/felixgeelhaar/codementor/internal/history"

var _ history.Store = (*ReviewStore)(nil)
