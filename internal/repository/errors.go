// Package repository contains the MySQL data access layer. Handlers depend
// on these repositories through small interfaces so that the store can be
// swapped for a test double; sentinel errors let higher layers translate
// failures into the right SCIM status codes.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a resource id does not exist. Handlers
// translate this into an HTTP 404 SCIM error.
var ErrNotFound = errors.New("resource not found")

// ErrEmailExists is returned when creating a user whose primary email is
// already taken. Handlers translate this into an HTTP 409 SCIM error.
var ErrEmailExists = errors.New("email already exists")

// mySQLDuplicateEntry is the server error number for a unique key violation.
const mySQLDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a MySQL duplicate key violation.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mySQLDuplicateEntry
}
