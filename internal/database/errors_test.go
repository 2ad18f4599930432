package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"postgres unique violation", &pq.Error{Code: "23505"}, true},
		{"postgres other error", &pq.Error{Code: "23503"}, false},
		{"wrapped postgres unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062}, true},
		{"mysql other error", &mysql.MySQLError{Number: 1452}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUniqueViolation(tt.err))
		})
	}
}

func TestIsUniqueViolationOn(t *testing.T) {
	const index = "idx_reveal_requests_payment_ref"

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"postgres named index", &pq.Error{Code: "23505", Constraint: index}, true},
		{"postgres other index", &pq.Error{Code: "23505", Constraint: "idx_reveal_requests_pending_pair"}, false},
		{"postgres not a unique violation", &pq.Error{Code: "23503", Constraint: index}, false},
		{
			"mysql 8 qualified key",
			&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'pay-1' for key 'reveal_requests." + index + "'"},
			true,
		},
		{"mysql 5.7 bare key", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'pay-1' for key '" + index + "'"}, true},
		{
			"mysql other key",
			&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a|b' for key 'reveal_requests.idx_reveal_requests_pending_pair'"},
			false,
		},
		{"wrapped", fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: index}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUniqueViolationOn(tt.err, index))
		})
	}
}
