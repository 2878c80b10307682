package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/service"
	. "github.com/smartystreets/goconvey/convey"
)

type memImages struct {
	puts map[string]string
}

func (m *memImages) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.puts == nil {
		m.puts = map[string]string{}
	}
	m.puts[key] = string(b)
	return "http://cdn.test/" + key, nil
}

func TestEventAdmin(t *testing.T) {
	Convey("Given an event service", t, func() {
		ctx := context.Background()
		st := openStores(t)
		images := &memImages{}
		svc := service.NewEventService(st.events, st.regs, images, 4)
		when := time.Date(2026, 12, 1, 18, 0, 0, 0, time.UTC)

		Convey("When events are created", func() {
			solo, err := svc.Create(ctx, model.EventRequest{Title: " Talk ", ScheduledAt: when.Add(time.Hour), TeamSize: 9})
			So(err, ShouldBeNil)
			team, err := svc.Create(ctx, model.EventRequest{Title: "Hackathon", TeamEvent: true, ScheduledAt: when})
			So(err, ShouldBeNil)

			Convey("Then team sizes follow the mode", func() {
				So(solo.Title, ShouldEqual, "Talk")
				So(solo.TeamSize, ShouldEqual, 1)
				So(team.TeamSize, ShouldEqual, 4)
			})

			Convey("Then the catalogue is ordered by schedule and searchable", func() {
				all, err := svc.List(ctx, "")
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 2)
				So(all[0].ID, ShouldEqual, team.ID)

				found, err := svc.List(ctx, "hack")
				So(err, ShouldBeNil)
				So(len(found), ShouldEqual, 1)
				So(found[0].ID, ShouldEqual, team.ID)
			})

			Convey("Then toggling team mode resets the size to 1", func() {
				got, err := svc.SetTeamMode(ctx, solo.ID, true)
				So(err, ShouldBeNil)
				So(got.TeamEvent, ShouldBeTrue)
				So(got.TeamSize, ShouldEqual, 1)

				got, err = svc.SetTeamMode(ctx, team.ID, false)
				So(err, ShouldBeNil)
				So(got.TeamEvent, ShouldBeFalse)
				So(got.TeamSize, ShouldEqual, 1)
			})

			Convey("Then the team size must be at least 1", func() {
				_, err := svc.SetTeamSize(ctx, team.ID, 0)
				So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)

				got, err := svc.SetTeamSize(ctx, team.ID, 5)
				So(err, ShouldBeNil)
				stored, err := svc.Get(ctx, team.ID)
				So(err, ShouldBeNil)
				So(got.TeamSize, ShouldEqual, 5)
				So(stored.TeamSize, ShouldEqual, 5)
			})

			Convey("Then an update keeps the image", func() {
				_, err := svc.SetImage(ctx, solo.ID, "image/png", strings.NewReader("png-bytes"))
				So(err, ShouldBeNil)

				updated, err := svc.Update(ctx, solo.ID, model.EventRequest{Title: "Keynote", Description: "d", ScheduledAt: when})
				So(err, ShouldBeNil)
				So(updated.Title, ShouldEqual, "Keynote")
				So(updated.ImageURL, ShouldStartWith, "http://cdn.test/events/"+solo.ID+"/")
				So(updated.ImageURL, ShouldEndWith, ".png")
				So(len(images.puts), ShouldEqual, 1)
			})

			Convey("Then unsupported images are rejected", func() {
				_, err := svc.SetImage(ctx, solo.ID, "application/pdf", strings.NewReader("%PDF"))
				So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
			})

			Convey("Then deleting an event removes its participants", func() {
				s := seedStudent(t, st.students, "P", "p@campus.edu")
				reg := service.NewRegistrationService(st.events, st.students, st.regs, service.WithTokenSequencer(st.regs))
				_, err := reg.Register(ctx, solo.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})
				So(err, ShouldBeNil)

				_, participants, err := svc.Participants(ctx, solo.ID)
				So(err, ShouldBeNil)
				So(len(participants), ShouldEqual, 1)

				So(svc.Delete(ctx, solo.ID), ShouldBeNil)
				So(st.countRegistrations(t, solo.ID), ShouldEqual, 0)
				_, _, err = svc.Participants(ctx, solo.ID)
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the request is invalid", func() {
			_, errTitle := svc.Create(ctx, model.EventRequest{Title: " ", ScheduledAt: when})
			_, errTime := svc.Create(ctx, model.EventRequest{Title: "T"})
			_, errSize := svc.Create(ctx, model.EventRequest{Title: "T", ScheduledAt: when, TeamEvent: true, TeamSize: -1})

			Convey("Then it is rejected", func() {
				So(errors.Is(errTitle, service.ErrInvalidRequest), ShouldBeTrue)
				So(errors.Is(errTime, service.ErrInvalidRequest), ShouldBeTrue)
				So(errors.Is(errSize, service.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When an unknown event is addressed", func() {
			So(errors.Is(svc.Delete(ctx, "missing"), service.ErrNotFound), ShouldBeTrue)
			_, err := svc.SetTeamMode(ctx, "missing", true)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})
}
