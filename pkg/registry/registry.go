// Package registry collects the activity descriptions of the registered job
// workers so a process can publish what it serves.
package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"nc-param-manager/internal/common/validation"
)

type Registry struct {
	mu         sync.RWMutex
	version    string
	updated    time.Time
	activities map[string]Activity
}

func New(version string) *Registry {
	return &Registry{version: version, activities: map[string]Activity{}}
}

// Register adds a. Task types must be unique and follow
// domain.subdomain.action.
func (r *Registry) Register(a Activity) error {
	if a.TaskType == "" {
		return fmt.Errorf("activity %q has no task type", a.ID)
	}
	if err := validation.ValidateTaskType(a.TaskType); err != nil {
		return fmt.Errorf("activity %q: %w", a.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.activities[a.TaskType]; exists {
		return fmt.Errorf("task type %s already registered", a.TaskType)
	}
	r.activities[a.TaskType] = a
	r.updated = time.Now().UTC()
	return nil
}

func (r *Registry) Lookup(taskType string) (Activity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.activities[taskType]
	return a, ok
}

// Snapshot returns the registry document, activities ordered by task type.
func (r *Registry) Snapshot() ActivityRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc := ActivityRegistry{Version: r.version, Activities: make([]Activity, 0, len(r.activities))}
	if !r.updated.IsZero() {
		doc.LastUpdated = r.updated.Format(time.RFC3339)
	}
	for _, a := range r.activities {
		doc.Activities = append(doc.Activities, a)
	}
	sort.Slice(doc.Activities, func(i, j int) bool {
		return doc.Activities[i].TaskType < doc.Activities[j].TaskType
	})
	return doc
}

// ServeHTTP writes the snapshot as JSON.
func (r *Registry) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(r.Snapshot())
}

// SchemaMap decodes a JSON schema literal for embedding in an Activity.
func SchemaMap(schemaJSON string) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(schemaJSON), &m); err != nil {
		return nil
	}
	return m
}
