package catalogimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookreview/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) InsertBooks(ctx context.Context, rows []Row) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

const sample = `isbn,title,author,year
0380795272,Krondor: The Betrayal,Raymond E. Feist,1998
1416949658,The Dark Is Rising,Susan Cooper,1973
"0553803700","I, Robot",Isaac Asimov,1950
`

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Line: 2, ISBN: "0380795272", Title: "Krondor: The Betrayal", Author: "Raymond E. Feist", Year: 1998}, rows[0])
	assert.Equal(t, "I, Robot", rows[2].Title)
	assert.Equal(t, 4, rows[2].Line)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "header"},
		{"missing column", "isbn,title,author,year\n1,T,A,2000\n2,T,A\n", "line 3: expected 4 columns, got 3"},
		{"bad year", "isbn,title,author,year\n1,T,A,soon\n", `line 2: invalid year "soon"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	rows, err := Parse(strings.NewReader("isbn,title,author,year\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("counts skipped duplicates", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("InsertBooks", ctx, mock.MatchedBy(func(rows []Row) bool { return len(rows) == 3 })).Return(2, nil)

		res, err := NewService(repo, logging.Discard()).Run(ctx, strings.NewReader(sample))
		require.NoError(t, err)
		assert.Equal(t, Result{Rows: 3, Inserted: 2, Skipped: 1}, res)
		repo.AssertExpectations(t)
	})

	t.Run("malformed input writes nothing", func(t *testing.T) {
		repo := new(mockRepo)

		_, err := NewService(repo, logging.Discard()).Run(ctx, strings.NewReader("isbn,title,author,year\n1,T,A,x\n"))
		assert.Error(t, err)
		repo.AssertNotCalled(t, "InsertBooks", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("InsertBooks", ctx, mock.Anything).Return(0, errors.New("connection reset"))

		_, err := NewService(repo, logging.Discard()).Run(ctx, strings.NewReader(sample))
		assert.ErrorContains(t, err, "connection reset")
	})
}
