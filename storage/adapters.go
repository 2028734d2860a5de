package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// SQLAdapter covers both SQL backends; the dialect is sniffed from the
// registered driver's type name since database/sql hides it otherwise.
type SQLAdapter struct {
	DB      *sql.DB
	dialect string
}

func (a *SQLAdapter) Dialect() string { return a.dialect }

func isSQLDB(conn any) bool {
	_, ok := conn.(*sql.DB)
	return ok
}

func newSQLAdapter(conn any) (Adapter, error) {
	db := conn.(*sql.DB)
	name := strings.ToLower(fmt.Sprintf("%T", db.Driver()))
	dialect := "postgres"
	if strings.Contains(name, "sqlite") {
		dialect = "sqlite"
	}
	return &SQLAdapter{DB: db, dialect: dialect}, nil
}

type MongoAdapter struct {
	DB *mongo.Database
}

func (a *MongoAdapter) Dialect() string { return "mongodb" }

func isMongoDB(conn any) bool {
	_, ok := conn.(*mongo.Database)
	return ok
}

func newMongoAdapter(conn any) (Adapter, error) {
	return &MongoAdapter{DB: conn.(*mongo.Database)}, nil
}
