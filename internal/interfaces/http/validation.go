package http

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmacy-api/internal/domain"
)

var validate = validator.New()

func init() {
	// decimal.Decimal como numérico para que gte=0, gt=0 funcionen sin pánico.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate parsea el body JSON y aplica las etiquetas validate. Devuelve ErrInvalidInput.
func bindAndValidate(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("invalid body: %v: %w", err, domain.ErrInvalidInput)
	}
	return validateStruct(req)
}

// queryAndValidate igual que bindAndValidate pero con query params.
func queryAndValidate(c *fiber.Ctx, req interface{}) error {
	if err := c.QueryParser(req); err != nil {
		return fmt.Errorf("invalid query: %v: %w", err, domain.ErrInvalidInput)
	}
	return validateStruct(req)
}

func validateStruct(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid fields: %s: %w", strings.Join(fields, ", "), domain.ErrInvalidInput)
	}
	return nil
}

// parseDay interpreta YYYY-MM-DD; vacío devuelve nil.
func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("date %q must be YYYY-MM-DD: %w", s, domain.ErrInvalidInput)
	}
	return &t, nil
}

func parseRange(start, end string) (from, to *time.Time, err error) {
	if from, err = parseDay(start); err != nil {
		return nil, nil, err
	}
	if to, err = parseDay(end); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("end date before start date: %w", domain.ErrInvalidInput)
	}
	return from, to, nil
}
