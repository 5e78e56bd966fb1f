package adapters

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/ports"
	"multiparty-params/internal/types"
)

// JobFileAdapter reads job declarations from YAML or JSON files. JSON is
// read through the YAML decoder, which accepts it unchanged.
type JobFileAdapter struct {
	// KnownFields rejects keys the declaration format does not define.
	KnownFields bool
}

func NewJobFileAdapter() JobFileAdapter {
	return JobFileAdapter{}
}

func (a JobFileAdapter) LoadJob(path string) (types.JobDeclaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.JobDeclaration{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("job file not found: " + path).
			WithCause(err)
	}
	return a.ParseJob(data)
}

// ParseJob decodes one declaration document.
func (a JobFileAdapter) ParseJob(data []byte) (types.JobDeclaration, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.JobDeclaration{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("job declaration is empty")
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(a.KnownFields)
	var job types.JobDeclaration
	if err := decoder.Decode(&job); err != nil {
		if errors.Is(err, io.EOF) {
			return types.JobDeclaration{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("job declaration is empty")
		}
		return types.JobDeclaration{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse job declaration").
			WithCause(err)
	}
	return job, nil
}

var _ ports.JobSpecPort = JobFileAdapter{}
