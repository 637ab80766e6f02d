// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package main

import (
	"path/filepath"

	"github.com/mediagateway/gateway/internal/catalog"
	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/crdt"
	"github.com/mediagateway/gateway/internal/experiment"
	"github.com/mediagateway/gateway/internal/lora"
	"github.com/mediagateway/gateway/internal/offlinequeue"
	"github.com/mediagateway/gateway/internal/vectorindex"
)

// stores bundles every storage handle the engine needs, so main can close
// them all in reverse-acquisition order with a single defer.
type stores struct {
	catalog *catalog.Store
	vector  *vectorindex.Index
	lora    *lora.Store
	exp     *experiment.Store
	crdt    *crdt.Store
	offline *offlinequeue.Queue
}

// openStores opens one DuckDB file per analytical store (catalog, vector
// index, LoRA adapters, experiments, CRDT op-logs) plus the BadgerDB offline
// queue. Each DuckDB store gets its own file derived from the configured
// database path's directory, rather than sharing one file across several
// independent *sql.DB connections.
func openStores(cfg *config.DatabaseConfig) (*stores, error) {
	catalogStore, err := catalog.Open(dataFile(cfg, "catalog.duckdb"))
	if err != nil {
		return nil, err
	}
	vectorIndex, err := vectorindex.Open(dataFile(cfg, "vectorindex.duckdb"))
	if err != nil {
		_ = catalogStore.Close()
		return nil, err
	}
	loraStore, err := lora.Open(dataFile(cfg, "lora.duckdb"))
	if err != nil {
		_ = vectorIndex.Close()
		_ = catalogStore.Close()
		return nil, err
	}
	expStore, err := experiment.Open(dataFile(cfg, "experiment.duckdb"))
	if err != nil {
		_ = loraStore.Close()
		_ = vectorIndex.Close()
		_ = catalogStore.Close()
		return nil, err
	}
	crdtStore, err := crdt.Open(dataFile(cfg, "crdt.duckdb"))
	if err != nil {
		_ = expStore.Close()
		_ = loraStore.Close()
		_ = vectorIndex.Close()
		_ = catalogStore.Close()
		return nil, err
	}
	offlineQueue, err := offlinequeue.Open(offlinequeue.DefaultConfig(filepath.Join(filepath.Dir(cfg.Path), "offlinequeue")))
	if err != nil {
		_ = crdtStore.Close()
		_ = expStore.Close()
		_ = loraStore.Close()
		_ = vectorIndex.Close()
		_ = catalogStore.Close()
		return nil, err
	}

	return &stores{
		catalog: catalogStore,
		vector:  vectorIndex,
		lora:    loraStore,
		exp:     expStore,
		crdt:    crdtStore,
		offline: offlineQueue,
	}, nil
}

// dataFile derives a component-specific DuckDB path from the configured
// database path's directory, copying the rest of the connection settings
// (threads, max memory) unchanged.
func dataFile(base *config.DatabaseConfig, name string) *config.DatabaseConfig {
	dir := filepath.Dir(base.Path)
	c := *base
	c.Path = filepath.Join(dir, name)
	return &c
}

func (s *stores) Close() {
	if s.offline != nil {
		_ = s.offline.Close()
	}
	if s.crdt != nil {
		_ = s.crdt.Close()
	}
	if s.exp != nil {
		_ = s.exp.Close()
	}
	if s.lora != nil {
		_ = s.lora.Close()
	}
	if s.vector != nil {
		_ = s.vector.Close()
	}
	if s.catalog != nil {
		_ = s.catalog.Close()
	}
}
