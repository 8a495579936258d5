package inspect

import (
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

const (
	// ModelsPath lists the registered interception models
	ModelsPath = "/models"
	// ContentType of every response
	ContentType = "application/json; charset=utf-8"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is the read side of the model registry
type Store interface {
	Get(identity models.TypeIdentity) (*interception.InterceptionModel, bool)
	List() []models.TypeIdentity
}

// ModelList is the body of GET /models
type ModelList struct {
	Count  int                          `json:"count"`
	Models []interception.ModelSnapshot `json:"models"`
}

// ErrorBody is returned with every non-2xx response
type ErrorBody struct {
	Error    string `json:"error"`
	Identity string `json:"identity,omitempty"`
}

// Service renders registered interception models. It is framework neutral; adapters map
// its results onto their own response types.
type Service struct {
	store Store
}

// NewService creates a service reading from store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Models returns snapshots of every registered model ordered by identity
func (s *Service) Models() []interception.ModelSnapshot {
	ids := s.store.List()
	snapshots := make([]interception.ModelSnapshot, 0, len(ids))
	for _, id := range ids {
		// a model may be undeployed between List and Get
		if model, ok := s.store.Get(id); ok {
			snapshots = append(snapshots, model.Snapshot())
		}
	}
	return snapshots
}

// Model returns the snapshot of one model
func (s *Service) Model(identity models.TypeIdentity) (interception.ModelSnapshot, bool) {
	model, ok := s.store.Get(identity)
	if !ok {
		return interception.ModelSnapshot{}, false
	}
	return model.Snapshot(), true
}

// ListModels renders GET /models
func (s *Service) ListModels() (int, []byte) {
	snapshots := s.Models()
	return encode(http.StatusOK, ModelList{Count: len(snapshots), Models: snapshots})
}

// GetModel renders GET /models/{identity}. Identities contain slashes, so adapters pass the
// raw wildcard match; a leading slash is ignored and an empty identity lists all models.
func (s *Service) GetModel(identity string) (int, []byte) {
	identity = strings.TrimPrefix(identity, "/")
	if identity == "" {
		return s.ListModels()
	}
	snapshot, ok := s.Model(models.TypeIdentity(identity))
	if !ok {
		return encode(http.StatusNotFound, ErrorBody{Error: "interception model not found", Identity: identity})
	}
	return encode(http.StatusOK, snapshot)
}

func encode(status int, v interface{}) (int, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		body, _ = json.Marshal(ErrorBody{Error: err.Error()})
		return http.StatusInternalServerError, body
	}
	return status, body
}
