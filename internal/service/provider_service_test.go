package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

func newProviderServiceForValidation() *ProviderService {
	return NewProviderService(nil, nil, nil, nil, nil, "", nil, 0, logrus.New())
}

func TestProviderService_Apply_AddressTooLong(t *testing.T) {
	svc := newProviderServiceForValidation()

	_, err := svc.Apply(context.Background(), ApplyInput{
		UserID:          uuid.New(),
		FullName:        "Pedro Ramírez",
		Address:         strings.Repeat("a", validation.MaxAddressLength+1),
		YearsExperience: 5,
		Specializations: "plomeria",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestProviderService_Apply_TooManySpecializations(t *testing.T) {
	svc := newProviderServiceForValidation()

	specs := make([]string, validation.MaxSpecializations+1)
	for i := range specs {
		specs[i] = "oficio"
	}

	_, err := svc.Apply(context.Background(), ApplyInput{
		UserID:          uuid.New(),
		FullName:        "Pedro Ramírez",
		Address:         "Calle Falsa 123",
		YearsExperience: 5,
		Specializations: strings.Join(specs, ","),
	})

	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "especializaciones")
}

func TestProviderService_Apply_NegativeExperience(t *testing.T) {
	svc := newProviderServiceForValidation()

	_, err := svc.Apply(context.Background(), ApplyInput{
		UserID:          uuid.New(),
		FullName:        "Pedro Ramírez",
		Address:         "Calle Falsa 123",
		YearsExperience: -1,
		Specializations: "plomeria",
	})

	assert.True(t, apperror.IsValidation(err))
}
