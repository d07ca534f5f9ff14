// internal/scholarship/upkeep.go
package scholarship

import (
	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

// ComputeWork lists the (student, milestone) payouts still owed, applicants in application order
// and milestones in index order. A budget <= 0 means no cap.
func (s *Scholarship) ComputeWork(budget int) models.WorkList {
	var work models.WorkList
	for _, app := range s.applications {
		if !app.IsApproved {
			continue
		}
		for id, m := range s.milestones {
			if !m.IsCompleted || m.FundsReleased || m.Recipient != app.Student {
				continue
			}
			if budget > 0 && len(work) >= budget {
				return work
			}
			work = append(work, models.WorkItem{Student: app.Student, MilestoneID: uint64(id)})
		}
	}
	return work
}

// CheckUpkeep reports whether any payout is owed, along with the encoded work list.
func (s *Scholarship) CheckUpkeep(budget int) (bool, []byte) {
	work := s.ComputeWork(budget)
	return len(work) > 0, models.EncodeWorkList(work)
}

// PerformUpkeep decodes performData and applies it. See ApplyWork.
func (s *Scholarship) PerformUpkeep(performData []byte, budget int) error {
	work, err := models.DecodeWorkList(performData)
	if err != nil {
		return apperr.ErrInvalidPerformData.Withf("%v", err)
	}
	_, err = s.ApplyWork(work, budget)
	return err
}

type payout struct {
	milestoneID uint64
	student     models.Address
	amount      uint64
}

// ApplyWork releases the funds for each item that is still completed, unreleased and addressed to
// its recipient. Anything else in the list is stale and skipped. At most budget items are examined
// (<= 0 means all). It returns how many milestones were paid.
func (s *Scholarship) ApplyWork(work models.WorkList, budget int) (int, error) {
	if budget > 0 && len(work) > budget {
		work = work[:budget]
	}

	var (
		payouts []payout
		total   uint64
		planned = make(map[uint64]bool)
	)
	for _, item := range work {
		if item.MilestoneID >= uint64(len(s.milestones)) {
			return 0, apperr.ErrInvalidMilestone.Withf("milestone %d out of range", item.MilestoneID)
		}
		m := s.milestones[item.MilestoneID]
		if !m.IsCompleted || m.FundsReleased || planned[item.MilestoneID] || m.Recipient != item.Student {
			continue
		}
		planned[item.MilestoneID] = true
		payouts = append(payouts, payout{milestoneID: item.MilestoneID, student: item.Student, amount: m.Amount})
		total += m.Amount
	}

	if balance := s.Balance(); total > balance {
		return 0, apperr.ErrInsufficientBalance.Withf("owes %d, holds %d", total, balance)
	}

	for _, p := range payouts {
		if err := s.env.Bank.Transfer(s.address, p.student, p.amount); err != nil {
			// Unreachable after the balance check above.
			return 0, err
		}
		s.milestones[p.milestoneID].FundsReleased = true
		s.released += p.amount
		if idx, ok := s.byStudent[p.student]; ok {
			s.applications[idx].FundsWithdrawn += p.amount
		}
		s.emit(models.EventFundsReleased, models.Fields{
			"student":     p.student,
			"amount":      p.amount,
			"milestoneId": p.milestoneID,
		})

		if s.status != models.StatusCompleted && s.allReleased() {
			s.setStatus(models.StatusCompleted)
		}
	}
	return len(payouts), nil
}

func (s *Scholarship) allReleased() bool {
	for _, m := range s.milestones {
		if !m.FundsReleased {
			return false
		}
	}
	return true
}
