// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

//go:embed activities.json
var builtinJSON []byte

var (
	builtinOnce sync.Once
	builtin     *ActivityRegistry
	builtinErr  error
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Builtin returns the registry compiled into the binary.
func Builtin() (*ActivityRegistry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = parse(builtinJSON)
	})
	return builtin, builtinErr
}

// MustActivity looks taskType up in the builtin registry and panics when it
// is missing.
func MustActivity(taskType string) Activity {
	reg, err := Builtin()
	if err != nil {
		panic(err)
	}
	a, ok := reg.Find(taskType)
	if !ok {
		panic(fmt.Sprintf("registry: no activity for task type %q", taskType))
	}
	return a
}

func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry: %w", err)
	}
	return &reg, nil
}
