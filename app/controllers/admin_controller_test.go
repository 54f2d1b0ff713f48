package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "underscores become spaces", filename: "Introduction_to_Blockchain.pdf", want: "Introduction to Blockchain"},
		{name: "uppercase extension", filename: "Consensus_Basics.PDF", want: "Consensus Basics"},
		{name: "no extension", filename: "Plain_Title", want: "Plain Title"},
		{name: "no underscores", filename: "Overview.pdf", want: "Overview"},
		{name: "dots inside the name survive", filename: "Chapter_1.2_Intro.pdf", want: "Chapter 1.2 Intro"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, titleFromFilename(tc.filename))
		})
	}
}
