package api

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
)

// ClockLayout is the accepted format for stop arrival and departure times
const ClockLayout = "15:04:05"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators teaches gin's validator the "clock" and "money" tags
// and how to compare decimal.Decimal fields. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		if registerErr = v.RegisterValidation("clock", validateClock); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("money", validateMoney)
	})
	return registerErr
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := time.Parse(ClockLayout, fl.Field().String())
	return err == nil
}

// validateMoney rejects amounts finer than a cent. The custom type func has
// already turned the field into a float, so the decimal is read from the parent.
func validateMoney(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return false
	}

	field := parent.FieldByName(fl.StructFieldName())
	if !field.IsValid() {
		return false
	}
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return models.IsWholeCents(d)
}

// decimalValue lets numeric tags such as gt=0 apply to decimal fields
func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}
