package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(imageStructLevel, ImageConfig{})
	return v
}

// imageStructLevel enforces the per-backend required fields.
func imageStructLevel(sl validator.StructLevel) {
	img := sl.Current().Interface().(ImageConfig)

	switch img.Backend {
	case "file":
		if img.File.Dir == "" {
			sl.ReportError(img.File.Dir, "File.Dir", "Dir", "required_for_backend", "file")
		}
	case "badger":
		if img.Badger.Dir == "" {
			sl.ReportError(img.Badger.Dir, "Badger.Dir", "Dir", "required_for_backend", "badger")
		}
	case "s3":
		if img.S3.Bucket == "" {
			sl.ReportError(img.S3.Bucket, "S3.Bucket", "Bucket", "required_for_backend", "s3")
		}
		if (img.S3.AccessKeyID == "") != (img.S3.SecretAccessKey == "") {
			sl.ReportError(img.S3.AccessKeyID, "S3.AccessKeyID", "AccessKeyID", "credentials_pair", "")
		}
	}
}

// Validate checks cfg against its struct tags and backend rules. The error
// lists every violation, one per line.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "\n"))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required_for_backend":
		return fmt.Sprintf("%s: required when image.backend is %q", field, fe.Param())
	case "credentials_pair":
		return fmt.Sprintf("%s: access_key_id and secret_access_key must be set together", field)
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed '%s=%s' (value: %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s: failed '%s' (value: %v)", field, fe.Tag(), fe.Value())
}
