package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 1))

	t.Setenv("TEST_INT", "forty-two")
	assert.Equal(t, 1, getEnvInt("TEST_INT", 1))

	t.Setenv("TEST_INT", "")
	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "45")
	assert.Equal(t, 45*time.Second, getEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION", time.Second))
}

func TestGetEnvBoolAndFloat(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	assert.False(t, getEnvBool("TEST_BOOL", true))

	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, getEnvBool("TEST_BOOL", true))

	t.Setenv("TEST_FLOAT", "0.7")
	assert.InDelta(t, 0.7, getEnvFloat("TEST_FLOAT", 0.1), 1e-9)
}

func TestDBConfigDSN(t *testing.T) {
	c := &DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "cv", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=cv port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
