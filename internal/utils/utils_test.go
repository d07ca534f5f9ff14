// internal/utils/utils_test.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	addr := models.NamedAddress("company")

	token, err := GenerateJWT(addr, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	caller, err := claims.CallerAddress()
	require.NoError(t, err)
	assert.Equal(t, addr, caller)
	assert.Equal(t, "scholarship-escrow", claims.Issuer)

	SetJWTSecret("rotated-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(models.NamedAddress("student"), -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestCallerAddressRejectsZero(t *testing.T) {
	claims := &JWTClaims{Address: models.ZeroAddress.Hex()}
	_, err := claims.CallerAddress()
	assert.Error(t, err)

	claims.Address = "not-an-address"
	_, err = claims.CallerAddress()
	assert.Error(t, err)
}

type validated struct {
	Student string  `validate:"required,address"`
	MinGPA  float64 `validate:"gpa"`
}

func TestValidateStruct(t *testing.T) {
	ok := validated{Student: "0x00000000000000000000000000000000000000c3", MinGPA: 3.5}
	require.NoError(t, ValidateStruct(ok))

	err := ValidateStruct(validated{Student: "0x12", MinGPA: -1})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "student", errs[0].Field)
	assert.Equal(t, "address", errs[0].Tag)
	assert.Equal(t, "gpa", errs[1].Tag)

	assert.Error(t, ValidateStruct(validated{Student: ok.Student, MinGPA: 700}))
	assert.Empty(t, GetValidationErrors(errors.New("not a validation error")))
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusForKind(apperr.KindAuthorization))
	assert.Equal(t, http.StatusBadRequest, StatusForKind(apperr.KindValidation))
	assert.Equal(t, http.StatusConflict, StatusForKind(apperr.KindState))
	assert.Equal(t, http.StatusConflict, StatusForKind(apperr.KindResource))
	assert.Equal(t, http.StatusBadGateway, StatusForKind(apperr.KindExternalCall))
	assert.Equal(t, http.StatusInternalServerError, StatusForKind(""))
}

func TestChainErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ChainErrorResponse(c, apperr.ErrMilestoneMismatch.Withf("2 titles, 1 amounts"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "MilestoneMismatch", body.Error.Code)
	assert.Equal(t, "2 titles, 1 amounts", body.Error.Details)
}

func TestPageBounds(t *testing.T) {
	start, end := PageBounds(45, PaginationParams{Page: 3, Limit: 20})
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = PageBounds(5, PaginationParams{Page: 4, Limit: 20})
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	result := CreatePaginationResult([]int{}, 45, PaginationParams{Page: 1, Limit: 20})
	assert.Equal(t, 3, result.TotalPages)
}
