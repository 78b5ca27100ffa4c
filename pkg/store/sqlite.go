package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("store: not found")

// ═══════════════════════════════════════════════════════════════════════════
// 记录类型
// ═══════════════════════════════════════════════════════════════════════════

// Paper 一篇论文记录
type Paper struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AuthorIDs   []string  `json:"author_ids"`
	Topics      []string  `json:"topics,omitempty"`
	Abstract    string    `json:"abstract,omitempty"`
	Status      string    `json:"status,omitempty"` // draft / submitted / published
	Impact      float64   `json:"impact"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Experiment 一次实验记录
type Experiment struct {
	ID          string         `json:"id"`
	AgentID     string         `json:"agent_id"`
	Hypothesis  string         `json:"hypothesis"`
	Topic       string         `json:"topic,omitempty"`
	Success     bool           `json:"success"`
	Results     map[string]any `json:"results,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}

// ═══════════════════════════════════════════════════════════════════════════
// SQLiteStore
// ═══════════════════════════════════════════════════════════════════════════

// SQLiteStore SQLite 持久化存储
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // 串行化写操作
}

// Open 打开（或创建）数据库并初始化表结构
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			specialization TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL,
			doc TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_stage ON agents(stage)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			doc TEXT NOT NULL,
			submitted_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS paper_authors (
			paper_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			PRIMARY KEY (paper_id, agent_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_authors_agent ON paper_authors(agent_id)`,
		`CREATE TABLE IF NOT EXISTS experiments (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			doc TEXT NOT NULL,
			completed_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_experiments_agent ON experiments(agent_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ═══════════════════════════════════════════════════════════════════════════
// Agent 状态
// ═══════════════════════════════════════════════════════════════════════════

// SaveAgent 保存（插入或整体覆盖）Agent 状态
func (s *SQLiteStore) SaveAgent(ctx context.Context, state agent.State) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal agent %s: %w", state.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agents (id, name, specialization, stage, doc, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			specialization = excluded.specialization,
			stage = excluded.stage,
			doc = excluded.doc,
			updated_at = datetime('now')
	`, state.ID, state.Name, state.Specialization, string(state.Stage), string(doc))
	if err != nil {
		return fmt.Errorf("save agent %s: %w", state.ID, err)
	}
	return nil
}

// LoadAgent 加载 Agent 状态，不存在时返回 ErrNotFound
func (s *SQLiteStore) LoadAgent(ctx context.Context, id string) (agent.State, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM agents WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return agent.State{}, ErrNotFound
	}
	if err != nil {
		return agent.State{}, fmt.Errorf("load agent %s: %w", id, err)
	}

	var state agent.State
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return agent.State{}, fmt.Errorf("unmarshal agent %s: %w", id, err)
	}
	return state, nil
}

// ListAgents 加载全部 Agent 状态
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]agent.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM agents ORDER BY updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	states := make([]agent.State, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		var state agent.State
		if err := json.Unmarshal([]byte(doc), &state); err != nil {
			return nil, fmt.Errorf("unmarshal agent: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return states, nil
}

// UpdateAgentStage 只更新阶段列与文档中的阶段字段
func (s *SQLiteStore) UpdateAgentStage(ctx context.Context, id string, stage agent.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE agents
		SET stage = ?, doc = json_set(doc, '$.stage', ?), updated_at = datetime('now')
		WHERE id = ?
	`, string(stage), string(stage), id)
	if err != nil {
		return fmt.Errorf("update agent stage %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update agent stage %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAgent 删除 Agent 状态
func (s *SQLiteStore) DeleteAgent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete agent %s: %w", id, err)
	}
	return nil
}

// CountAgentsByStage 各阶段的 Agent 数量
func (s *SQLiteStore) CountAgentsByStage(ctx context.Context) (map[agent.Stage]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage, COUNT(*) FROM agents GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("count agents: %w", err)
	}
	defer rows.Close()

	counts := make(map[agent.Stage]int)
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, fmt.Errorf("scan stage count: %w", err)
		}
		counts[agent.Stage(stage)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage counts: %w", err)
	}
	return counts, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 论文
// ═══════════════════════════════════════════════════════════════════════════

// SavePaper 保存论文记录
func (s *SQLiteStore) SavePaper(ctx context.Context, paper Paper) error {
	if paper.SubmittedAt.IsZero() {
		paper.SubmittedAt = time.Now()
	}
	doc, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper %s: %w", paper.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save paper: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO papers (id, title, doc, submitted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, doc = excluded.doc
	`, paper.ID, paper.Title, string(doc), paper.SubmittedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save paper %s: %w", paper.ID, err)
	}

	for _, authorID := range paper.AuthorIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO paper_authors (paper_id, agent_id) VALUES (?, ?)
		`, paper.ID, authorID)
		if err != nil {
			return fmt.Errorf("save paper author: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save paper: %w", err)
	}
	return nil
}

// GetPaper 加载论文记录，不存在时返回 ErrNotFound
func (s *SQLiteStore) GetPaper(ctx context.Context, id string) (Paper, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM papers WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Paper{}, ErrNotFound
	}
	if err != nil {
		return Paper{}, fmt.Errorf("get paper %s: %w", id, err)
	}

	var paper Paper
	if err := json.Unmarshal([]byte(doc), &paper); err != nil {
		return Paper{}, fmt.Errorf("unmarshal paper %s: %w", id, err)
	}
	return paper, nil
}

// ListPapersByAuthor 某作者的全部论文
func (s *SQLiteStore) ListPapersByAuthor(ctx context.Context, agentID string) ([]Paper, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.doc FROM papers p
		JOIN paper_authors pa ON p.id = pa.paper_id
		WHERE pa.agent_id = ?
		ORDER BY p.submitted_at ASC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list papers by author: %w", err)
	}
	defer rows.Close()

	papers := make([]Paper, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		var paper Paper
		if err := json.Unmarshal([]byte(doc), &paper); err != nil {
			return nil, fmt.Errorf("unmarshal paper: %w", err)
		}
		papers = append(papers, paper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}
	return papers, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 实验
// ═══════════════════════════════════════════════════════════════════════════

// SaveExperiment 保存实验记录
func (s *SQLiteStore) SaveExperiment(ctx context.Context, exp Experiment) error {
	if exp.CompletedAt.IsZero() {
		exp.CompletedAt = time.Now()
	}
	doc, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("marshal experiment %s: %w", exp.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO experiments (id, agent_id, doc, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`, exp.ID, exp.AgentID, string(doc), exp.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save experiment %s: %w", exp.ID, err)
	}
	return nil
}

// ListExperimentsByAgent 某 Agent 的全部实验
func (s *SQLiteStore) ListExperimentsByAgent(ctx context.Context, agentID string) ([]Experiment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM experiments
		WHERE agent_id = ?
		ORDER BY completed_at ASC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	exps := make([]Experiment, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		var exp Experiment
		if err := json.Unmarshal([]byte(doc), &exp); err != nil {
			return nil, fmt.Errorf("unmarshal experiment: %w", err)
		}
		exps = append(exps, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiments: %w", err)
	}
	return exps, nil
}
