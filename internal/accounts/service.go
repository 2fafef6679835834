// Package accounts stores patient PIN credentials and issues the short-lived
// sessions that gate exports. A patient registers a 4-digit PIN once; every
// export first logs in with it.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/bundle"
	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
	"github.com/dmitrijs2005/cmgshare/internal/dbx"
	"github.com/dmitrijs2005/cmgshare/internal/logging"
)

// Session is the result of a successful login.
type Session struct {
	PatientCode string
	Token       string
	ExpiresAt   time.Time
}

// Service provides registration, login and session validation.
type Service struct {
	db              *sql.DB
	repos           RepositoryFactory
	peppers         *cryptox.PepperRing
	jwtSecret       []byte
	sessionValidity time.Duration
	logger          logging.Logger
	now             func() time.Time
}

// NewService wires a Service. secretKey signs session tokens.
func NewService(db *sql.DB, repos RepositoryFactory, peppers *cryptox.PepperRing,
	secretKey string, sessionValidity time.Duration, logger logging.Logger) *Service {
	return &Service{
		db:              db,
		repos:           repos,
		peppers:         peppers,
		jwtSecret:       []byte(secretKey),
		sessionValidity: sessionValidity,
		logger:          logger,
		now:             time.Now,
	}
}

// Register creates the credential for patientCode. It fails with
// common.ErrorAlreadyExists when the code is already registered.
func (s *Service) Register(ctx context.Context, patientCode, pin string) error {
	if err := bundle.ValidatePatientCode(patientCode); err != nil {
		return err
	}
	if err := bundle.ValidatePin(pin); err != nil {
		return err
	}

	cred, err := cryptox.CreateCredential(patientCode, pin, s.peppers.Current())
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)
		if _, err := repo.GetByCode(ctx, patientCode); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return repo.Create(ctx, cred)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return err
		}
		s.logger.Error(ctx, "register failed", "patient_code", patientCode, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "patient registered", "patient_code", patientCode, "pepper_version", cred.PepperVersion)
	return nil
}

// Login verifies pin and returns a session. Unknown codes and wrong PINs
// both yield common.ErrorUnauthorized after the same hashing work.
func (s *Service) Login(ctx context.Context, patientCode, pin string) (*Session, error) {
	repo := s.repos(s.db)

	cred, err := repo.GetByCode(ctx, patientCode)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnPinHash(pin, s.peppers.Current())
			s.logger.Warn(ctx, "login rejected", "patient_code", patientCode)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "credential lookup failed", "patient_code", patientCode, "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPin(cred, pin, s.peppers)
	if err != nil {
		s.logger.Error(ctx, "pin verification unavailable", "patient_code", patientCode,
			"pepper_version", cred.PepperVersion, "error", err)
		return nil, err
	}
	if !ok {
		s.logger.Warn(ctx, "login rejected", "patient_code", patientCode)
		return nil, common.ErrorUnauthorized
	}

	token, expires, err := GenerateToken(patientCode, s.jwtSecret, s.sessionValidity, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: sign session: %v", common.ErrorInternal, err)
	}

	s.logger.Debug(ctx, "session issued", "patient_code", patientCode, "expires_at", expires)
	return &Session{PatientCode: patientCode, Token: token, ExpiresAt: expires}, nil
}

// PatientFromToken returns the patient code of a valid session token.
func (s *Service) PatientFromToken(token string) (string, error) {
	return PatientFromToken(token, s.jwtSecret)
}
