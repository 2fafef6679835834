package accounts

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims identify the patient a session belongs to.
type Claims struct {
	jwt.RegisteredClaims
	PatientCode string `json:"patient_code"`
}

// GenerateToken signs an HS256 session token for patientCode.
func GenerateToken(patientCode string, secretKey []byte, validity time.Duration, now time.Time) (string, time.Time, error) {
	expires := now.Add(validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   patientCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		PatientCode: patientCode,
	})

	s, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expires, nil
}

// PatientFromToken validates tokenString and returns its patient code.
func PatientFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.PatientCode == "" {
		return "", common.ErrInvalidToken
	}
	return claims.PatientCode, nil
}
