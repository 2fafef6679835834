// Package share runs the export and import pipelines that turn a plaintext
// clinical bundle into a .cmg container and back.
//
// Export: collecting payload -> keyed -> encrypted -> encoded.
// Import: received bytes -> decoded -> verified -> plaintext released.
//
// Each call is independent and holds no shared mutable state, so a Service
// may be used concurrently. A failed call returns no partial output.
package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/container"
	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
	"github.com/dmitrijs2005/cmgshare/internal/logging"
	"github.com/google/uuid"
)

// Stage is a step of the export or import state machine.
type Stage string

const (
	StageCollecting Stage = "collecting"
	StageKeyed      Stage = "keyed"
	StageEncrypted  Stage = "encrypted"
	StageEncoded    Stage = "encoded"

	StageReceived Stage = "received"
	StageDecoded  Stage = "decoded"
	StageVerified Stage = "verified"
	StageReleased Stage = "released"
)

// StageError reports the stage at which a pipeline stopped.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Export is the result of a successful export. Key must be shown to the user
// once and then dropped; nothing in this package keeps a copy.
type Export struct {
	ID        string
	Key       cryptox.EphemeralKey
	Container []byte
	Algorithm container.Algorithm
}

type Service struct {
	logger    logging.Logger
	algorithm container.Algorithm
}

// NewService returns a pipeline that seals new containers with alg.
func NewService(logger logging.Logger, alg container.Algorithm) (*Service, error) {
	if !alg.Supported() {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedAlgorithm, uint8(alg))
	}
	return &Service{logger: logger, algorithm: alg}, nil
}

// NewImportService returns a pipeline for Import, which takes the algorithm
// from each container header. Its Export uses cryptox.DefaultAlgorithm.
func NewImportService(logger logging.Logger) *Service {
	return &Service{logger: logger, algorithm: cryptox.DefaultAlgorithm}
}

// Export encrypts payload under a freshly generated key and encodes the
// container. payload is treated as opaque bytes.
func (s *Service) Export(ctx context.Context, payload []byte) (*Export, error) {
	id := uuid.NewString()
	log := s.logger.With("export_id", id)
	log.Debug(ctx, "export started", "stage", StageCollecting, "payload_size", len(payload))

	key, err := cryptox.GenerateExportKey()
	if err != nil {
		return nil, s.fail(ctx, log, StageKeyed, err)
	}
	log.Debug(ctx, "export key generated", "stage", StageKeyed)

	c, err := cryptox.EncryptWith(s.algorithm, payload, key)
	if err != nil {
		key.Wipe()
		return nil, s.fail(ctx, log, StageEncrypted, err)
	}
	log.Debug(ctx, "payload encrypted", "stage", StageEncrypted)

	data, err := c.Marshal()
	if err != nil {
		key.Wipe()
		return nil, s.fail(ctx, log, StageEncoded, err)
	}
	log.Info(ctx, "container exported", "stage", StageEncoded, "algorithm", s.algorithm.String(), "size", len(data))

	return &Export{ID: id, Key: key, Container: data, Algorithm: s.algorithm}, nil
}

// Import decodes data, authenticates it under key and returns the plaintext.
// Structural failures surface as the codec's errors; every cryptographic
// failure is common.ErrAuthenticationFailed.
func (s *Service) Import(ctx context.Context, data []byte, key cryptox.EphemeralKey) ([]byte, error) {
	log := s.logger.With("import_size", len(data))
	log.Debug(ctx, "import started", "stage", StageReceived)

	c, err := container.Decode(data)
	if err != nil {
		return nil, s.fail(ctx, log, StageDecoded, err)
	}
	log.Debug(ctx, "container decoded", "stage", StageDecoded, "algorithm", c.Algorithm.String())

	plaintext, err := cryptox.Decrypt(c, key)
	if err != nil {
		return nil, s.fail(ctx, log, StageVerified, err)
	}
	log.Info(ctx, "container verified", "stage", StageReleased, "payload_size", len(plaintext))

	return plaintext, nil
}

func (s *Service) fail(ctx context.Context, log logging.Logger, stage Stage, err error) error {
	switch {
	case errors.Is(err, common.ErrEntropyUnavailable), errors.Is(err, common.ErrConfiguration):
		log.Error(ctx, "pipeline aborted", "stage", stage, "error", err)
	default:
		log.Warn(ctx, "pipeline rejected input", "stage", stage, "error", err)
	}
	return &StageError{Stage: stage, Err: err}
}
