package handlers

import (
	"time"

	"github.com/spec-kit/cockpit-service/internal/api/dto"
	"github.com/spec-kit/cockpit-service/internal/domain"
)

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func ticketSummary(inc *domain.Incident) dto.TicketSummary {
	return dto.TicketSummary{
		Number:     inc.Number,
		Title:      inc.Title,
		Status:     string(inc.Status),
		Priority:   string(inc.Priority),
		DeviceName: inc.DeviceName,
		CallerName: inc.CallerName,
		OpenedAt:   optionalTime(inc.OpenedAt),
		UpdatedAt:  optionalTime(inc.UpdatedAt),
	}
}

func ticketSummaries(incidents []domain.Incident) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(incidents))
	for i := range incidents {
		items = append(items, ticketSummary(&incidents[i]))
	}
	return items
}

func ticketDetail(inc *domain.Incident) dto.TicketDetail {
	return dto.TicketDetail{
		TicketSummary: ticketSummary(inc),
		Description:   inc.Description,
		Category:      inc.Category,
		AssignedTo:    inc.AssignedTo,
		CallerID:      inc.CallerID,
		RawPriority:   inc.RawPriority,
		Active:        inc.Active,
	}
}

func deviceSummary(d *domain.DeviceSummary) dto.DeviceSummary {
	return dto.DeviceSummary{
		ID:           d.ID,
		Name:         d.Name,
		SerialNumber: d.SerialNumber,
		Owner:        d.Owner,
	}
}

func deviceDetail(d *domain.DeviceDetail) dto.DeviceDetail {
	out := dto.DeviceDetail{
		ID:                d.ID,
		Name:              d.Name,
		Owner:             d.Owner,
		OwnerDisplayName:  d.OwnerDisplayName,
		Manufacturer:      d.Manufacturer,
		Model:             d.Model,
		SerialNumber:      d.SerialNumber,
		OperatingSystem:   d.OperatingSystem,
		OSVersion:         d.OSVersion,
		Compliance:        string(d.Compliance),
		Encrypted:         d.Encrypted,
		EnrolledAt:        optionalTime(d.EnrolledAt),
		LastSyncAt:        optionalTime(d.LastSyncAt),
		TotalStorageBytes: d.TotalStorageBytes,
		FreeStorageBytes:  d.FreeStorageBytes,
	}
	if d.Network != nil {
		out.Network = &dto.DeviceNetwork{
			IPAddress:      d.Network.IPAddress,
			MACAddress:     d.Network.MACAddress,
			ConnectionType: d.Network.ConnectionType,
			VPNConnected:   d.Network.VPNConnected,
		}
	}
	return out
}

func solutionSummary(s *domain.SolutionSummary) dto.SolutionSummary {
	points := s.Points
	if points == nil {
		points = []string{}
	}
	return dto.SolutionSummary{
		IncidentNumber: s.IncidentNumber,
		Points:         points,
		Source:         string(s.Source),
		ArticleCount:   s.ArticleCount,
		Confidence:     s.Confidence,
	}
}

func actionRecord(a *domain.RemoteAction) dto.ActionRecord {
	return dto.ActionRecord{
		ID:         a.ID,
		Name:       a.Name,
		Type:       a.Type,
		Purpose:    a.Purpose,
		Status:     string(a.Status),
		DeviceName: a.DeviceName,
		ExecutedBy: a.ExecutedBy,
		CreatedAt:  optionalTime(a.CreatedAt),
		UpdatedAt:  optionalTime(a.UpdatedAt),
		Result:     a.Result,
	}
}

func actionRecords(actions []domain.RemoteAction) []dto.ActionRecord {
	items := make([]dto.ActionRecord, 0, len(actions))
	for i := range actions {
		items = append(items, actionRecord(&actions[i]))
	}
	return items
}

func detailView(view domain.TicketDetailView) dto.TicketDetailView {
	out := dto.TicketDetailView{
		Number:             view.Number,
		ResolvedDeviceName: view.ResolvedDeviceName,
		Ticket:             dto.Slot{State: string(view.Ticket.State)},
		Device:             dto.Slot{State: string(view.Device.State)},
		Solution:           dto.Slot{State: string(view.Solution.State), Error: view.Solution.Err},
		Actions:            dto.Slot{State: string(view.Actions.State), Error: view.Actions.Err},
	}
	out.Device.Error = view.Device.Err

	if view.Ticket.State == domain.SlotReady {
		t := ticketDetail(&view.Ticket.Ticket)
		out.Ticket.Data = t
	}
	if view.Device.State == domain.SlotReady {
		d := deviceDetail(&view.Device.Device)
		out.Device.Data = d
	}
	if view.Solution.State == domain.SlotReady {
		s := solutionSummary(&view.Solution.Summary)
		out.Solution.Data = s
	}
	if view.Actions.State == domain.SlotReady {
		out.Actions.Data = actionRecords(view.Actions.Actions)
	}
	return out
}
