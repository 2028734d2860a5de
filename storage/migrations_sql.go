package storage

var sqliteMigrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS af_schema_version (
			num INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS af_user (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			external_id TEXT NOT NULL UNIQUE,
			date_created TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS af_conversation (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			user_id INTEGER NOT NULL REFERENCES af_user(id),
			title TEXT NOT NULL,
			date_created TIMESTAMP NOT NULL,
			date_updated TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_af_conversation_user_updated
			ON af_conversation (user_id, date_updated)`,
		`CREATE TABLE IF NOT EXISTS af_conversation_message (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			conversation_id INTEGER NOT NULL REFERENCES af_conversation(id),
			user_id INTEGER NOT NULL REFERENCES af_user(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			date_created TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_af_conversation_message_conv_created
			ON af_conversation_message (conversation_id, date_created, id)`,
		`CREATE TABLE IF NOT EXISTS af_user_fact (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES af_user(id),
			fact_key TEXT NOT NULL,
			fact_value TEXT NOT NULL,
			date_created TIMESTAMP NOT NULL,
			date_updated TIMESTAMP NOT NULL,
			UNIQUE (user_id, fact_key)
		)`,
	},
}

var postgresMigrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS af_schema_version (
			num INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS af_user (
			id BIGSERIAL PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			external_id TEXT NOT NULL UNIQUE,
			date_created TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS af_conversation (
			id BIGSERIAL PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			user_id BIGINT NOT NULL REFERENCES af_user(id),
			title TEXT NOT NULL,
			date_created TIMESTAMPTZ NOT NULL,
			date_updated TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_af_conversation_user_updated
			ON af_conversation (user_id, date_updated)`,
		`CREATE TABLE IF NOT EXISTS af_conversation_message (
			id BIGSERIAL PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			conversation_id BIGINT NOT NULL REFERENCES af_conversation(id),
			user_id BIGINT NOT NULL REFERENCES af_user(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			date_created TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_af_conversation_message_conv_created
			ON af_conversation_message (conversation_id, date_created, id)`,
		`CREATE TABLE IF NOT EXISTS af_user_fact (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES af_user(id),
			fact_key TEXT NOT NULL,
			fact_value TEXT NOT NULL,
			date_created TIMESTAMPTZ NOT NULL,
			date_updated TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, fact_key)
		)`,
	},
}
