package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/link/mocks"
)

func newTask(t *testing.T, id uuid.UUID, observed int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(link.RecordScanPayload{LinkID: id, Observed: observed})
	require.NoError(t, err)
	return asynq.NewTask(link.TypeRecordScan, payload)
}

func TestRecordScanHandler_ProcessTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	h := NewRecordScanHandler(repo)
	id := uuid.New()

	tests := []struct {
		name      string
		task      *asynq.Task
		mockSetup func()
		wantErr   bool
		skipRetry bool
	}{
		{
			name: "increments",
			task: newTask(t, id, 5),
			mockSetup: func() {
				repo.EXPECT().IncrementScanCount(gomock.Any(), id, int64(5)).Return(nil)
			},
		},
		{
			name: "deleted link is not retried",
			task: newTask(t, id, 1),
			mockSetup: func() {
				repo.EXPECT().IncrementScanCount(gomock.Any(), id, int64(1)).Return(link.ErrLinkNotFound)
			},
			wantErr:   true,
			skipRetry: true,
		},
		{
			name: "store failure is retried",
			task: newTask(t, id, 2),
			mockSetup: func() {
				repo.EXPECT().IncrementScanCount(gomock.Any(), id, int64(2)).Return(errors.New("timeout"))
			},
			wantErr: true,
		},
		{
			name:      "bad payload",
			task:      asynq.NewTask(link.TypeRecordScan, []byte("{")),
			mockSetup: func() {},
			wantErr:   true,
			skipRetry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			err := h.ProcessTask(context.Background(), tt.task)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}
