package migrations

import (
	"github.com/pkg/errors"
)

// migration sources keyed the way the go-bindata migrate source expects
var files = map[string]string{
	"1_create_sessions.up.sql": `
CREATE TABLE IF NOT EXISTS sessions (
    id           VARCHAR(64) NOT NULL,
    user_id      VARCHAR(64) NOT NULL,
    active_flow  VARCHAR(32) NOT NULL DEFAULT '',
    current_step INTEGER     NOT NULL DEFAULT 0,
    fields       JSONB       NOT NULL DEFAULT '{}',
    created_at   TIMESTAMP   NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMP,
    PRIMARY KEY (user_id)
);
`,
	"1_create_sessions.down.sql": `
DROP TABLE IF EXISTS sessions;
`,
}

func AssetNames() []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	return names
}

func Asset(name string) ([]byte, error) {
	data, ok := files[name]
	if !ok {
		return nil, errors.Errorf("unknown migration asset: %s", name)
	}
	return []byte(data), nil
}
