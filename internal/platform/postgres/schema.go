package postgres

// Schema is applied idempotently on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
	id         UUID PRIMARY KEY,
	last_name  TEXT NOT NULL,
	first_name TEXT NOT NULL,
	patronymic TEXT NOT NULL DEFAULT '',
	gender     TEXT NOT NULL CHECK (gender IN ('man', 'woman')),
	birthday   TIMESTAMPTZ NOT NULL,
	phones     TEXT[] NOT NULL DEFAULT '{}',
	address    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS families (
	id        UUID PRIMARY KEY,
	father_id UUID REFERENCES persons (id),
	mother_id UUID REFERENCES persons (id),
	marriage  TIMESTAMPTZ,
	children  UUID[] NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_families_father ON families (father_id) WHERE father_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_families_mother ON families (mother_id) WHERE mother_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_families_children ON families USING GIN (children);

CREATE TABLE IF NOT EXISTS admins (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	action      TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	actor_id    UUID,
	subject_id  UUID,
	relative_id UUID,
	family_id   UUID,
	client_ip   TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	browser     TEXT NOT NULL DEFAULT '',
	os          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_audit_subject ON audit_events (subject_id);
`
