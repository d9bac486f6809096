// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wlog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestSetLevelParsesKnownLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetLevel("warn")
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("GlobalLevel() = %v, want WarnLevel", zerolog.GlobalLevel())
	}
}

func TestSetLevelFallsBackToInfoOnUnknownLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetLevel("not-a-real-level")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel() = %v, want InfoLevel", zerolog.GlobalLevel())
	}
}

func TestWithClientInheritsPackageLevel(t *testing.T) {
	l := WithClient(7)
	if l.GetLevel() != log.GetLevel() {
		t.Errorf("expected child logger to inherit the package logger's level")
	}
}

func TestWithConnectionInheritsPackageLevel(t *testing.T) {
	id := uuid.New()
	l := WithConnection(3, id)
	if l.GetLevel() != log.GetLevel() {
		t.Errorf("expected child logger to inherit the package logger's level")
	}
}

func TestEventBuildersReturnNonNilEvents(t *testing.T) {
	if Debug() == nil || Info() == nil || Warn() == nil || Error() == nil {
		t.Fatal("expected every level's event builder to return a non-nil *zerolog.Event")
	}
}
