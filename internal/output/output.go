// Package output defines the artifact writer interface.
package output

import "github.com/katbiondi/chembl-multitask/internal/model"

// Writer serializes a finished dataset. Implementations own their destination
// (file path, object store key) and must refuse a dataset that fails Validate.
type Writer interface {
	Write(ds *model.Dataset) error
}
