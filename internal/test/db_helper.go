package test

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// schemaDDL 分类法相关表结构
const schemaDDL = `
CREATE TABLE taxonomies (
	name         TEXT PRIMARY KEY,
	label        TEXT NOT NULL DEFAULT '',
	object_type  TEXT NOT NULL DEFAULT 'post',
	hierarchical BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE terms (
	term_id BIGSERIAL PRIMARY KEY,
	name    TEXT NOT NULL,
	slug    TEXT NOT NULL
);
CREATE TABLE term_taxonomy (
	term_taxonomy_id BIGSERIAL PRIMARY KEY,
	term_id          BIGINT NOT NULL REFERENCES terms (term_id),
	taxonomy         TEXT NOT NULL REFERENCES taxonomies (name),
	description      TEXT,
	parent           BIGINT,
	count            BIGINT NOT NULL DEFAULT 0,
	UNIQUE (term_id, taxonomy)
);
CREATE TABLE term_relationships (
	object_id        BIGINT NOT NULL,
	term_taxonomy_id BIGINT NOT NULL REFERENCES term_taxonomy (term_taxonomy_id),
	term_order       INT NOT NULL DEFAULT 0,
	PRIMARY KEY (object_id, term_taxonomy_id)
);
CREATE TABLE termmeta (
	meta_id    BIGSERIAL PRIMARY KEY,
	term_id    BIGINT NOT NULL REFERENCES terms (term_id),
	meta_key   TEXT NOT NULL,
	meta_value TEXT
);
CREATE TABLE contents (
	id           BIGSERIAL PRIMARY KEY,
	title        TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'post',
	status       TEXT NOT NULL DEFAULT 'publish',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// SetupTestDB 在独立 schema 中建表并返回连接，测试结束后删除 schema
// 未设置 TAXONOMY_TEST_DATABASE_URL 时跳过
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TAXONOMY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("未设置 TAXONOMY_TEST_DATABASE_URL，跳过数据库测试")
	}

	admin, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Skipf("无法连接测试数据库: %v", err)
	}
	if err := admin.Ping(); err != nil {
		admin.Close()
		t.Skipf("无法ping测试数据库: %v", err)
	}

	schema := "taxonomy_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if _, err := admin.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		admin.Close()
		t.Fatalf("创建测试 schema 失败: %v", err)
	}

	// lib/pq 把未知参数作为运行时参数传给服务端
	db, err := sql.Open("postgres", withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("打开测试连接失败: %v", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		if _, err := admin.Exec(fmt.Sprintf("DROP SCHEMA %s CASCADE", schema)); err != nil {
			t.Logf("删除测试 schema 失败 %s: %v", schema, err)
		}
		admin.Close()
	})
	return db
}

func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

// MustExec 执行 SQL，失败时终止测试
func MustExec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("执行 SQL 失败: %v\n%s", err, query)
	}
}

// QueryInt64 查询单个整数
func QueryInt64(t *testing.T, db *sql.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("查询失败: %v\n%s", err, query)
	}
	return n
}
