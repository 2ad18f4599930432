package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
)

// TestIntegration_AuditChain_DetectsTampering appends a chain through the
// container, edits one stored row behind its back and expects Verify to point
// at the edited link.
func TestIntegration_AuditChain_DetectsTampering(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, dbDriver := range []string{"postgres", "mysql"} {
		t.Run(dbDriver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, dbDriver)
			defer teardownIntegrationTest(t, ctx)

			auditUseCase, err := ctx.container.AuditUseCase()
			require.NoError(t, err)
			txManager, err := ctx.container.TxManager()
			require.NoError(t, err)

			bg := context.Background()
			resourceID := uuid.Must(uuid.NewV7()).String()
			actions := []auditDomain.Action{
				auditDomain.ActionRevealRequest,
				auditDomain.ActionRevealConsent,
				auditDomain.ActionRevealAccess,
			}

			var entries []*auditDomain.AuditEntry
			for _, action := range actions {
				err := txManager.WithTx(bg, func(txCtx context.Context) error {
					entry, err := auditUseCase.Append(txCtx, &auditDomain.AppendInput{
						UserID:       "0xclient",
						Action:       action,
						ResourceType: auditDomain.ResourceRevealRequest,
						ResourceID:   resourceID,
						Details:      map[string]string{"status": string(action)},
					})
					if err != nil {
						return err
					}
					entries = append(entries, entry)
					return nil
				})
				require.NoError(t, err)
			}

			require.Len(t, entries, 3)
			assert.Equal(t, auditDomain.GenesisHash, entries[0].PreviousHash)
			assert.Equal(t, entries[0].ChainHash, entries[1].PreviousHash)
			assert.Equal(t, entries[1].ChainHash, entries[2].PreviousHash)

			report, err := auditUseCase.Verify(bg, auditDomain.ResourceRevealRequest, resourceID)
			require.NoError(t, err)
			assert.True(t, report.Valid)
			assert.Equal(t, 3, report.Length)

			query := `UPDATE audit_entries SET details = $1 WHERE resource_id = $2 AND sequence = $3`
			if dbDriver == "mysql" {
				query = `UPDATE audit_entries SET details = ? WHERE resource_id = ? AND sequence = ?`
			}
			_, err = ctx.db.Exec(query, `{"status":"DENIED"}`, resourceID, entries[1].Sequence)
			require.NoError(t, err)

			report, err = auditUseCase.Verify(bg, auditDomain.ResourceRevealRequest, resourceID)
			require.NoError(t, err)
			assert.False(t, report.Valid)
			assert.Equal(t, 1, report.FirstInvalidIndex)
		})
	}
}
