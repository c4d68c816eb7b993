package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/go-posts/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// checkPattern matches "<table>_<column>_check" style constraint names,
// which is what Postgres generates for column CHECK constraints.
var checkPattern = regexp.MustCompile(`^[^_]+_(.+)_check$`)

// ConvertPgError converts a raw *pgconn.PgError into *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode creates "<DOMAIN>_<ACTION>" application codes.
//
//	posts + CheckViolation => POST_INVALID
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringTooLong, InvalidText:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces a client-facing message for sqlErr.
func formatUserFriendlyMessage(sqlErr *Error) string {
	switch sqlErr.Code {
	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(extractColumnForCheckViolation(sqlErr.ConstraintName))
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case StringTooLong:
		return "One or more values are too long"

	case InvalidText:
		return "One or more values have an invalid format"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName singularizes the table name, falling back to "record".
func getEntityName(tableName string) string {
	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case ("first_name" -> "First Name").
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForCheckViolation infers the column from "<table>_<column>_check".
func extractColumnForCheckViolation(constraintName string) string {
	matches := checkPattern.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// HandleError converts a low-level database error into an application-level error.
//
//   - *errs.HTTPError: returned unchanged
//   - *pgconn.PgError: constraint violations become 400, the rest 500
//   - no rows: 404
//   - anything else: 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case NotNullViolation:
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case CheckViolation:
			var fieldErrors []errs.FieldError
			if column := extractColumnForCheckViolation(sqlErr.ConstraintName); column != "" {
				fieldErrors = append(fieldErrors, errs.FieldError{
					Field: column,
					Error: "does not meet required conditions",
				})
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case StringTooLong, InvalidText:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Repositories may tag the error as "table:<name>:" to name the entity.
		errMsg := err.Error()
		tablePrefix := "table:"
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			entityName := getEntityName(table)
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
