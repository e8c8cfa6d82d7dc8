package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/queuelinehq/queueline/internal/domain/availability"
	domain "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/timezone"
)

const (
	waitCacheTTL = 15 * time.Second
	waitHorizon  = 12 * time.Hour
)

// EstimatedWait computes the duration-aware business wait estimate. Results
// are cached briefly in redis since the display boards poll it.
type EstimatedWait struct {
	repo domain.Repository
	rdb  *redis.Client
}

func NewEstimatedWait(repo domain.Repository, rdb *redis.Client) *EstimatedWait {
	return &EstimatedWait{repo: repo, rdb: rdb}
}

func (uc *EstimatedWait) Execute(
	ctx context.Context,
	businessID uint,
	serviceID uint,
) (time.Duration, error) {

	if uc.rdb != nil {
		if cached, err := uc.rdb.Get(ctx, waitKey(businessID, serviceID)).Result(); err == nil {
			if seconds, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return time.Duration(seconds) * time.Second, nil
			}
		}
	}

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return 0, err
	}

	employees, err := uc.repo.ListEmployees(ctx, businessID)
	if err != nil {
		return 0, err
	}

	now := timezone.NowIn(business.Timezone)

	work := make(map[uint]availability.CommittedWork, len(employees))
	for _, emp := range employees {
		assigned, err := uc.repo.FindActiveAssignedTo(ctx, emp.ID)
		if err != nil {
			return 0, err
		}
		booked, err := uc.repo.ListScheduledAppointments(ctx, emp.ID, now, now.Add(waitHorizon))
		if err != nil {
			return 0, err
		}
		work[emp.ID] = availability.CommittedWork{
			QueueEntries: assigned,
			Appointments: booked,
		}
	}

	wait := availability.BusinessWait(business, employees, work, serviceID, now)

	if uc.rdb != nil {
		seconds := strconv.FormatInt(int64(wait/time.Second), 10)
		_ = uc.rdb.Set(ctx, waitKey(businessID, serviceID), seconds, waitCacheTTL).Err()
	}

	return wait, nil
}

func waitKey(businessID, serviceID uint) string {
	return fmt.Sprintf("queueline:wait:%d:%d", businessID, serviceID)
}
