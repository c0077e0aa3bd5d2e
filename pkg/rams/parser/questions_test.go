package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"period", "1. What is the scope?", []string{"What is the scope?"}},
		{"paren", "12) Who supervises?", []string{"Who supervises?"}},
		{"bare digits", "3 Where is the site?", []string{"Where is the site?"}},
		{"dash bullet", "- Which PPE?", []string{"Which PPE?"}},
		{"star bullet", "*Which tools?", []string{"Which tools?"}},
		{"no prefix", "What training is required?", []string{"What training is required?"}},
		{"indented", "   4.   Emergency plan?  ", []string{"Emergency plan?"}},
		{"blank lines", "1. A\n\n\n2. B\r\n\r\n3. C", []string{"A", "B", "C"}},
		{"prefix only", "5.\n- \n6. F", []string{"F"}},
		{"keeps inner digits", "7. Is 110V plant used?", []string{"Is 110V plant used?"}},
		{"drops preamble", "Sure, here they are:\n1. A\n2. B\nLet me know!", []string{"A", "B"}},
		{"plain lines only", "First?\nSecond?", []string{"First?", "Second?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.text))
		})
	}
}

func numbered(n int) string {
	var sb strings.Builder
	sb.WriteString("Here are your questions:\n\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "%d. Question %d?\n", i, i)
	}
	return sb.String()
}

func TestParseQuestionsExact(t *testing.T) {
	qs, err := ParseQuestions(numbered(20), 20)
	require.NoError(t, err)
	require.Len(t, qs, 20)
	assert.Equal(t, "Question 1?", qs[0])
	assert.Equal(t, "Question 20?", qs[19])
}

func TestParseQuestionsTruncates(t *testing.T) {
	qs, err := ParseQuestions(numbered(25), 20)
	require.NoError(t, err)
	require.Len(t, qs, 20)
	assert.Equal(t, "Question 20?", qs[19])
}

func TestParseQuestionsShortfall(t *testing.T) {
	_, err := ParseQuestions(numbered(5), 20)
	assert.ErrorIs(t, err, apperror.ErrGenerationIncomplete)
}
