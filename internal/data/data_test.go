package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcreekmore/rustache"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	content := `
title: Release notes
count: 3
draft: false
tags:
  - go
  - templates
author:
  name: Ada
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	scope, err := Load(path)
	require.NoError(t, err)

	title, ok := scope.Get("title")
	require.True(t, ok)
	assert.Equal(t, rustache.Static("Release notes"), title)

	count, ok := scope.Get("count")
	require.True(t, ok)
	assert.Equal(t, rustache.Static("3"), count)

	draft, ok := scope.Get("draft")
	require.True(t, ok)
	assert.Equal(t, rustache.Bool(false), draft)

	tags, ok := scope.Get("tags")
	require.True(t, ok)
	assert.Equal(t, rustache.Sequence{rustache.Static("go"), rustache.Static("templates")}, tags)

	author, ok := scope.Get("author")
	require.True(t, ok)
	nested, ok := author.(*rustache.Scope)
	require.True(t, ok)
	name, ok := nested.Get("name")
	require.True(t, ok)
	assert.Equal(t, rustache.Static("Ada"), name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading data file")
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a\n- list\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "top-level value must be a mapping")
}

func TestParse_Empty(t *testing.T) {
	scope, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, scope.Len())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("key: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestParse_TopLevelScalar(t *testing.T) {
	_, err := Parse([]byte("just a string"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top-level value must be a mapping")
}

func TestParse_InterfaceKeys(t *testing.T) {
	// Non-string keys force yaml.v3 into its interface-keyed map; they
	// come out stringified.
	scope, err := Parse([]byte("1: one\ntrue: two\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "true"}, scope.Names())
}

func TestParse_NullEntriesSkipped(t *testing.T) {
	scope, err := Parse([]byte("a: 1\nb: null\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, scope.Names())
}

func TestParse_Timestamps(t *testing.T) {
	scope, err := Parse([]byte("published: 2015-01-01\nupdated: 2015-01-01T10:30:00Z\n"))
	require.NoError(t, err)

	published, ok := scope.Get("published")
	require.True(t, ok)
	assert.Equal(t, rustache.Static("2015-01-01"), published)

	updated, ok := scope.Get("updated")
	require.True(t, ok)
	assert.Equal(t, rustache.Static("2015-01-01T10:30:00Z"), updated)
}

func TestParse_NestedConversionError(t *testing.T) {
	_, err := Parse([]byte("entries:\n  - ok\n  - [nested, list]\n"))
	require.NoError(t, err) // nested lists are valid sequences

	_, err = Parse([]byte("binary: !!binary aGVsbG8=\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "binary"`)
}
