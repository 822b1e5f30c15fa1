package cli

import (
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-journals/jobs"
)

func TestTriggerTask(t *testing.T) {
	task, err := TriggerTask(jobs.TaskGLIntegrity, "", "")
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskGLIntegrity, task.Type())

	task, err = TriggerTask(jobs.TaskIdempotencyPurge, "", "")
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskIdempotencyPurge, task.Type())

	task, err = TriggerTask(jobs.TaskLedgerRefresh, "org-1", "2026-03")
	require.NoError(t, err)
	var payload jobs.LedgerRefreshPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "org-1", payload.OrgID)
	assert.Equal(t, "2026-03", payload.PeriodID)

	_, err = TriggerTask(jobs.TaskLedgerRefresh, "org-1", "")
	require.Error(t, err)

	_, err = TriggerTask("inventory:revaluation", "", "")
	require.ErrorContains(t, err, "unsupported job")
}

func TestQueueStats(t *testing.T) {
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault}, queueStats(nil))

	stats := queueStats(&asynq.QueueInfo{Queue: jobs.QueueDefault, Size: 7, Pending: 4, Retry: 2, Archived: 1})
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault, Size: 7, Pending: 4, Retry: 2, Archived: 1}, stats)
}

func TestJobsCommandsRequireClient(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(t.Context(), jobs.TaskGLIntegrity, "", "")
	require.Error(t, err)
	_, err = c.InspectQueue(t.Context())
	require.Error(t, err)
	_, err = c.ListScheduled(t.Context(), 0)
	require.Error(t, err)
}
