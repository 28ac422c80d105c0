// Package paramapitest provides an in-memory parameter service for tests.
package paramapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"
)

// Server serves the parameter service endpoints from memory. It validates
// the way the real service does: missing required values and type
// mismatches are errors, out-of-range numbers are warnings.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	packages    map[string]*parameters.Schema
	derived     map[string]parameters.ValueMap
	presets     map[string]map[string]presets.Preset
	failures    map[string]string
	requestIDs  []string
	calls       map[string]int
	lastPayload map[string]parameters.ValueMap
}

func NewServer() *Server {
	s := &Server{
		packages:    map[string]*parameters.Schema{},
		derived:     map[string]parameters.ValueMap{},
		presets:     map[string]map[string]presets.Preset{},
		failures:    map[string]string{},
		calls:       map[string]int{},
		lastPayload: map[string]parameters.ValueMap{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.route))
	return s
}

// BaseURL is the value for parameter_service.base_url.
func (s *Server) BaseURL() string { return s.URL + "/api" }

func (s *Server) AddPackage(name string, schema *parameters.Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[name] = schema
}

// AddPackageJSON registers a schema given as JSON.
func (s *Server) AddPackageJSON(name, schemaJSON string) error {
	var schema parameters.Schema
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		return err
	}
	s.AddPackage(name, &schema)
	return nil
}

// SetDerived fixes what calculate returns for a package.
func (s *Server) SetDerived(pkg string, values parameters.ValueMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.derived[pkg] = values
}

// Fail makes every request of an operation ("config", "validate",
// "calculate", "presets") answer success:false with msg. An empty msg
// clears the failure.
func (s *Server) Fail(op, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == "" {
		delete(s.failures, op)
		return
	}
	s.failures[op] = msg
}

// Calls counts handled requests per operation.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// LastPayload returns the parameters of the last request of op.
func (s *Server) LastPayload(op string) parameters.ValueMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPayload[op].Clone()
}

func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// RemotePresets lists what the server stores for pkg.
func (s *Server) RemotePresets(pkg string) []presets.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []presets.Preset{}
	for _, p := range s.presets[pkg] {
		out = append(out, p)
	}
	return out
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.EscapedPath(), "/api/parameters/")
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if unescaped, err := url.PathUnescape(seg); err == nil {
			segments[i] = unescaped
		}
	}
	if len(segments) < 2 {
		http.NotFound(w, r)
		return
	}
	pkg := segments[0]

	s.mu.Lock()
	s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
	s.mu.Unlock()

	switch {
	case segments[1] == "config" && r.Method == http.MethodGet:
		s.handleConfig(w, pkg)
	case segments[1] == "validate" && r.Method == http.MethodPost:
		s.handleValidate(w, r, pkg)
	case segments[1] == "calculate" && r.Method == http.MethodPost:
		s.handleCalculate(w, r, pkg)
	case segments[1] == "presets":
		s.handlePresets(w, r, pkg, segments[2:])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) begin(op string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	msg, failing := s.failures[op]
	return msg, failing
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data interface{}) map[string]interface{} {
	return map[string]interface{}{"success": true, "data": data, "timestamp": time.Now().Format(time.RFC3339)}
}

func failure(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}

func (s *Server) schema(pkg string) (*parameters.Schema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, found := s.packages[pkg]
	return schema, found
}

func (s *Server) handleConfig(w http.ResponseWriter, pkg string) {
	if msg, failing := s.begin("config"); failing {
		writeJSON(w, http.StatusInternalServerError, failure(msg))
		return
	}
	schema, found := s.schema(pkg)
	if !found {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("Template package '%s' not found", pkg),
			"message": "Failed to get parameter config: " + pkg,
		})
		return
	}
	writeJSON(w, http.StatusOK, ok(schema))
}

func (s *Server) readValues(w http.ResponseWriter, r *http.Request, op string) (parameters.ValueMap, bool) {
	var body struct {
		Parameters *parameters.ValueMap `json:"parameters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Parameters == nil {
		writeJSON(w, http.StatusBadRequest, failure("Missing parameters in request"))
		return nil, false
	}
	s.mu.Lock()
	s.lastPayload[op] = body.Parameters.Clone()
	s.mu.Unlock()
	return *body.Parameters, true
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request, pkg string) {
	msg, failing := s.begin("validate")
	values, valid := s.readValues(w, r, "validate")
	if !valid {
		return
	}
	if failing {
		writeJSON(w, http.StatusInternalServerError, failure(msg))
		return
	}
	schema, found := s.schema(pkg)
	if !found {
		writeJSON(w, http.StatusInternalServerError, failure("Template package not found"))
		return
	}
	writeJSON(w, http.StatusOK, ok(Validate(schema, values)))
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request, pkg string) {
	msg, failing := s.begin("calculate")
	if _, valid := s.readValues(w, r, "calculate"); !valid {
		return
	}
	if failing {
		writeJSON(w, http.StatusInternalServerError, failure(msg))
		return
	}
	s.mu.Lock()
	derived := s.derived[pkg].Clone()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": derived, "error": nil})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request, pkg string, rest []string) {
	if msg, failing := s.begin("presets"); failing {
		writeJSON(w, http.StatusInternalServerError, failure(msg))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presets[pkg] == nil {
		s.presets[pkg] = map[string]presets.Preset{}
	}
	stored := s.presets[pkg]

	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		list := []presets.Preset{}
		for _, p := range stored {
			list = append(list, p)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": list, "count": len(list)})

	case len(rest) == 0 && r.Method == http.MethodPost:
		var body struct {
			Name        string              `json:"name"`
			Description string              `json:"description"`
			Parameters  parameters.ValueMap `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			writeJSON(w, http.StatusBadRequest, failure("Missing preset name"))
			return
		}
		p := presets.Preset{
			Name:        body.Name,
			PackageName: pkg,
			Description: body.Description,
			Parameters:  body.Parameters,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		stored[body.Name] = p
		writeJSON(w, http.StatusOK, ok(map[string]string{"name": p.Name, "createdAt": p.CreatedAt}))

	case len(rest) == 2 && rest[1] == "load" && r.Method == http.MethodGet:
		p, found := stored[rest[0]]
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "Preset not found"})
			return
		}
		writeJSON(w, http.StatusOK, ok(p))

	case len(rest) == 1 && r.Method == http.MethodDelete:
		if _, found := stored[rest[0]]; !found {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "Preset not found"})
			return
		}
		delete(stored, rest[0])
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.NotFound(w, r)
	}
}

// Validate applies the service's rules to values.
func Validate(schema *parameters.Schema, values parameters.ValueMap) parameters.ValidationState {
	state := parameters.Clean()
	for _, def := range schema.Flatten() {
		v, present := values[def.Key]
		if !present || v.IsNull() {
			if def.Required {
				state.Errors[def.Key] = "This parameter is required"
			}
			continue
		}
		if !typeMatches(v, def.Type) {
			state.Errors[def.Key] = fmt.Sprintf("Wrong parameter type, expected %s", def.Type)
			continue
		}
		if len(def.Range) == 2 {
			n, isNum := v.AsNumber()
			lo, okLo := def.Range[0].AsNumber()
			hi, okHi := def.Range[1].AsNumber()
			if isNum && okLo && okHi && (n < lo || n > hi) {
				state.Warnings[def.Key] = fmt.Sprintf("Value outside recommended range [%v, %v]", lo, hi)
			}
		}
		if len(def.Options) > 0 && !contains(def.Options, v) {
			state.Errors[def.Key] = "Invalid value, not one of the options"
		}
	}
	state.Valid = len(state.Errors) == 0
	return state
}

func typeMatches(v parameters.Value, t parameters.Type) bool {
	switch t {
	case parameters.TypeNumber, parameters.TypeLength, parameters.TypeAngle, parameters.TypeSpeed, parameters.TypeCoordinate:
		return v.Kind() == parameters.KindNumber
	case parameters.TypeString, parameters.TypeMaterial:
		return v.Kind() == parameters.KindString
	case parameters.TypeBoolean:
		return v.Kind() == parameters.KindBool
	case parameters.TypeArray:
		return v.Kind() == parameters.KindArray
	case parameters.TypeObject, parameters.TypeTool:
		return v.Kind() == parameters.KindObject
	default:
		return true
	}
}

func contains(options []parameters.Value, v parameters.Value) bool {
	for _, o := range options {
		if o.Equal(v) {
			return true
		}
	}
	return false
}
