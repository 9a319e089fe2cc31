// Package database scopes one transaction to one request: opened before the
// handler runs, committed when it returns nil, rolled back when it returns
// an error or panics.
package database

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const txKey = "db_tx"

func Transaction(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			tx := db.Begin()
			if tx.Error != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "could not open transaction")
			}
			c.Set(txKey, tx)

			defer func() {
				if r := recover(); r != nil {
					tx.Rollback()
					panic(r)
				}
				if err != nil {
					tx.Rollback()
					return
				}
				if cErr := tx.Commit().Error; cErr != nil {
					err = echo.NewHTTPError(http.StatusInternalServerError, "could not commit transaction")
				}
			}()

			return next(c)
		}
	}
}

// FromContext returns the request-scoped transaction, or fallback when the
// middleware is not installed (unit tests call handlers directly).
func FromContext(c echo.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := c.Get(txKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}
