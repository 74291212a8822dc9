// Package journal хранит историю выполнений pipeline в Postgres.
//
// Журнал — собственная бухгалтерия драйвера: какие pipeline
// запускались, с какими параметрами и чем закончился каждый шаг.
// Experiment tracking остаётся на внешней платформе; журнал хранит
// только ссылки на её runs (remote_run_id).
//
// Журнал опционален: без DB_URL драйвер работает без него.
//
// Ожидаемая схема:
//
//	CREATE TABLE pipeline_runs (
//	    id          UUID PRIMARY KEY,
//	    project     TEXT NOT NULL,
//	    grp         TEXT NOT NULL,
//	    steps       TEXT[] NOT NULL,
//	    status      TEXT NOT NULL,
//	    started_at  TIMESTAMPTZ,
//	    finished_at TIMESTAMPTZ,
//	    error       TEXT,
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE step_runs (
//	    id              UUID PRIMARY KEY,
//	    pipeline_run_id UUID NOT NULL REFERENCES pipeline_runs(id),
//	    step            TEXT NOT NULL,
//	    source          TEXT NOT NULL,
//	    remote_run_id   TEXT,
//	    params          JSONB,
//	    status          TEXT NOT NULL,
//	    started_at      TIMESTAMPTZ,
//	    finished_at     TIMESTAMPTZ,
//	    error           TEXT,
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
package journal
