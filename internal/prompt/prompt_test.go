// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadLine(t *testing.T) {
	var out bytes.Buffer
	r := NewReader(strings.NewReader("yes\r\n\nlast"), &out)

	got, err := r.ReadLine("Do it? ")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
	assert.Equal(t, "Do it? ", out.String())

	got, err = r.ReadLine("Empty? ")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = r.ReadLine("Unterminated? ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = r.ReadLine("Gone? ")
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestUnattended(t *testing.T) {
	var out bytes.Buffer
	u := Unattended{Out: &out}

	got, err := u.ReadLine("Step size: [1.00] ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, out.String(), "Step size")
	assert.True(t, IsUnattended(u))
}

func TestScripted(t *testing.T) {
	s := NewScripted("a", "")

	got, err := s.ReadLine("first")
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	got, err = s.ReadLine("second")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = s.ReadLine("third")
	require.ErrorIs(t, err, ErrInputClosed)

	assert.Equal(t, []string{"first", "second", "third"}, s.Prompts)
	assert.True(t, s.Asked("sec"))
	assert.False(t, s.Asked("fourth"))
	assert.False(t, IsUnattended(s))
}
