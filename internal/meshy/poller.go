package meshy

import (
	"context"
	"time"

	"quiz3d/internal/domain"
)

// AwaitSuccess consulta la tarea a intervalo fijo hasta que llegue a SUCCEEDED
// o se agote maxWait. La primera consulta es inmediata. Un timeout NO es un
// error: se devuelve el último snapshot y el caller decide mirando Status.
// Cualquier error de transporte o de la API aborta el poll de inmediato.
func (c *Client) AwaitSuccess(ctx context.Context, taskID string, maxWait, interval time.Duration) (domain.TaskSnapshot, error) {
	var last domain.TaskSnapshot
	for waited := time.Duration(0); waited < maxWait; waited += interval {
		snap, err := c.GetTextTo3D(ctx, taskID)
		if err != nil {
			return last, err
		}
		last = snap
		if snap.Status == domain.TaskSucceeded {
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}
	return last, nil
}
