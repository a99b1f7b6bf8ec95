// internal/repository/errors.go
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/kanistore/storefront/internal/models"
)

// classify maps a gorm/driver error onto the models error classes.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w: %v", op, models.ErrInternal, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return pgconn.Timeout(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching query as a literal substring.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
