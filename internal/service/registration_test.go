package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/service"
	"github.com/Shivanand-hulikatti/event-portal/internal/telemetry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIndividualRegistration(t *testing.T) {
	for _, mode := range []string{"atomic", "legacy"} {
		Convey("Given an individual event with no registrations ("+mode+" allocation)", t, func() {
			ctx := context.Background()
			st := openStores(t)
			event := seedEvent(t, st.events, false, 1)
			x := seedStudent(t, st.students, "Xavier", "x@campus.edu")
			y := seedStudent(t, st.students, "Yara", "y@campus.edu")

			var opts []service.RegistrationOption
			if mode == "atomic" {
				opts = append(opts, service.WithTokenSequencer(st.regs))
			}
			svc := service.NewRegistrationService(st.events, st.students, st.regs, opts...)

			register := func(id string) model.Outcome {
				out, err := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: id, Description: "I like robots"})
				So(err, ShouldBeNil)
				return out
			}

			Convey("When X registers, re-registers, and then Y registers", func() {
				first := register(x.ID)
				again := register(x.ID)
				second := register(y.ID)

				Convey("Then X gets token 1 twice and Y gets token 2", func() {
					So(first, ShouldResemble, model.Registered(1))
					So(again, ShouldResemble, model.AlreadyRegistered(1))
					So(second, ShouldResemble, model.Registered(2))
					So(st.countRegistrations(t, event.ID), ShouldEqual, 2)
				})

				Convey("Then the stored rows carry the student identity", func() {
					reg, err := svc.Lookup(ctx, event.ID, x.ID)
					So(err, ShouldBeNil)
					So(reg.Token, ShouldEqual, 1)
					So(reg.Name, ShouldEqual, "Xavier")
					So(reg.Email, ShouldEqual, "x@campus.edu")
					So(reg.StudentID, ShouldEqual, x.ID)
					So(reg.TeamName, ShouldBeEmpty)
				})
			})

			Convey("When N students register one after another", func() {
				var tokens []int
				for i := 1; i <= 5; i++ {
					s := seedStudent(t, st.students, fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@campus.edu", i))
					tokens = append(tokens, register(s.ID).Token)
				}

				Convey("Then the Nth registration gets token N", func() {
					So(tokens, ShouldResemble, []int{1, 2, 3, 4, 5})
				})
			})
		})
	}
}

func TestTeamRegistration(t *testing.T) {
	Convey("Given a team event with team_size 3", t, func() {
		ctx := context.Background()
		st := openStores(t)
		event := seedEvent(t, st.events, true, 3)
		svc := service.NewRegistrationService(st.events, st.students, st.regs, service.WithTokenSequencer(st.regs))

		lead := func(name string) string {
			return seedStudent(t, st.students, name, name+"@campus.edu").ID
		}
		team := func(studentID, teamName string, members ...string) model.Outcome {
			out, err := svc.RegisterTeam(ctx, event.ID, model.TeamRegisterRequest{
				StudentID: studentID, TeamName: teamName, Members: members, Description: "we build things",
			})
			So(err, ShouldBeNil)
			return out
		}

		Convey("When teams Alpha, Alpha again, Beta and Gamma submit", func() {
			alpha := team(lead("a"), "Alpha", "A", "B")
			alphaAgain := team(lead("c"), "Alpha", "C", "D")
			beta := team(lead("e"), "Beta", "E", "F", "G")
			gamma := team(lead("h"), "Gamma", "H", "I", "J", "K")

			Convey("Then only Alpha and Beta are stored", func() {
				So(alpha, ShouldResemble, model.Registered(1))
				So(alphaAgain, ShouldResemble, model.AlreadyRegistered(1))
				So(beta, ShouldResemble, model.Registered(2))
				So(gamma.Status, ShouldEqual, model.StatusInvalidTeamSize)
				So(gamma.Reason, ShouldContainSubstring, "at most 3")
				So(st.countRegistrations(t, event.ID), ShouldEqual, 2)
			})

			Convey("Then the team row lists its members", func() {
				regs, err := st.regs.ListByEvent(ctx, event.ID)
				So(err, ShouldBeNil)
				So(regs[0].TeamName, ShouldEqual, "Alpha")
				So(regs[0].Name, ShouldEqual, "A, B")
				So(regs[1].Name, ShouldEqual, "E, F, G")
			})
		})

		Convey("When member counts straddle the limits", func() {
			one := team(lead("one"), "Solo", "A")
			blanks := team(lead("blank"), "Blanks", " A ", "", "   ")
			exact := team(lead("exact"), "Exact", "A", "B", "C")
			over := team(lead("over"), "Over", "A", "B", "C", "D")

			Convey("Then only the team at exactly the limit registers", func() {
				So(one.Status, ShouldEqual, model.StatusInvalidTeamSize)
				So(blanks.Status, ShouldEqual, model.StatusInvalidTeamSize)
				So(exact, ShouldResemble, model.Registered(1))
				So(over.Status, ShouldEqual, model.StatusInvalidTeamSize)
				So(st.countRegistrations(t, event.ID), ShouldEqual, 1)
			})
		})

		Convey("When the same student submits a second team", func() {
			id := lead("dup")
			first := team(id, "First", "A", "B")
			second := team(id, "Second", "C", "D")

			Convey("Then the email check wins before the team checks", func() {
				So(first, ShouldResemble, model.Registered(1))
				So(second, ShouldResemble, model.AlreadyRegistered(1))
			})
		})
	})

	Convey("Given a team event without a configured size", t, func() {
		ctx := context.Background()
		st := openStores(t)
		event := seedEvent(t, st.events, true, 0)
		lead := seedStudent(t, st.students, "Lead", "lead@campus.edu")

		register := func(svc *service.RegistrationService, members ...string) model.Outcome {
			out, err := svc.RegisterTeam(ctx, event.ID, model.TeamRegisterRequest{
				StudentID: lead.ID, TeamName: "Delta", Members: members, Description: "d",
			})
			So(err, ShouldBeNil)
			return out
		}

		Convey("Then the default limit of 4 applies", func() {
			svc := service.NewRegistrationService(st.events, st.students, st.regs)
			So(register(svc, "A", "B", "C", "D", "E").Status, ShouldEqual, model.StatusInvalidTeamSize)
			So(register(svc, "A", "B", "C", "D"), ShouldResemble, model.Registered(1))
		})

		Convey("Then a configured default overrides it", func() {
			svc := service.NewRegistrationService(st.events, st.students, st.regs, service.WithDefaultTeamSize(2))
			So(register(svc, "A", "B", "C").Status, ShouldEqual, model.StatusInvalidTeamSize)
		})
	})
}

func TestRegistrationValidation(t *testing.T) {
	Convey("Given one individual and one team event", t, func() {
		ctx := context.Background()
		st := openStores(t)
		solo := seedEvent(t, st.events, false, 1)
		teamEvent := seedEvent(t, st.events, true, 4)
		student := seedStudent(t, st.students, "Val", "val@campus.edu")
		svc := service.NewRegistrationService(st.events, st.students, st.regs, service.WithTokenSequencer(st.regs))

		Convey("When the description is blank", func() {
			_, err := svc.Register(ctx, solo.ID, model.RegisterRequest{StudentID: student.ID, Description: "  "})
			So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When the team name is blank", func() {
			_, err := svc.RegisterTeam(ctx, teamEvent.ID, model.TeamRegisterRequest{
				StudentID: student.ID, TeamName: " ", Members: []string{"A", "B"}, Description: "d",
			})
			So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When the event does not exist", func() {
			_, err := svc.Register(ctx, "missing", model.RegisterRequest{StudentID: student.ID, Description: "d"})
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the student does not exist", func() {
			_, err := svc.Register(ctx, solo.ID, model.RegisterRequest{StudentID: "ghost", Description: "d"})
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the registration mode does not match the event", func() {
			_, err := svc.Register(ctx, teamEvent.ID, model.RegisterRequest{StudentID: student.ID, Description: "d"})
			So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)

			_, err = svc.RegisterTeam(ctx, solo.ID, model.TeamRegisterRequest{
				StudentID: student.ID, TeamName: "T", Members: []string{"A", "B"}, Description: "d",
			})
			So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("Then nothing was inserted", func() {
			So(st.countRegistrations(t, solo.ID), ShouldEqual, 0)
			So(st.countRegistrations(t, teamEvent.ID), ShouldEqual, 0)
		})
	})
}

func TestLegacyAllocationRace(t *testing.T) {
	Convey("Given the read-max-then-insert path and concurrent submissions", t, func() {
		const n = 5
		events := &memEvents{}
		students := &memStudents{}
		event := seedEvent(t, events, false, 1)
		var ids []string
		for i := range n {
			ids = append(ids, seedStudent(t, students, fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@campus.edu", i)).ID)
		}

		// Every request reads the maximum before any of them inserts.
		var reads sync.WaitGroup
		reads.Add(n)
		regs := &memRegs{afterMaxToken: func() {
			reads.Done()
			reads.Wait()
		}}
		svc := service.NewRegistrationService(events, students, regs)

		outcomes := make([]model.Outcome, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i], _ = svc.Register(context.Background(), event.ID,
					model.RegisterRequest{StudentID: ids[i], Description: "d"})
			}(i)
		}
		wg.Wait()

		Convey("Then every attempt succeeds with the same token", func() {
			for _, o := range outcomes {
				So(o, ShouldResemble, model.Registered(1))
			}
			So(regs.count(), ShouldEqual, n)
		})
	})

	Convey("Given the atomic path and the same concurrent submissions", t, func() {
		const n = 5
		st := openStores(t)
		event := seedEvent(t, st.events, false, 1)
		var ids []string
		for i := range n {
			ids = append(ids, seedStudent(t, st.students, fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@campus.edu", i)).ID)
		}
		svc := service.NewRegistrationService(st.events, st.students, st.regs, service.WithTokenSequencer(st.regs))

		outcomes := make([]model.Outcome, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i], _ = svc.Register(context.Background(), event.ID,
					model.RegisterRequest{StudentID: ids[i], Description: "d"})
			}(i)
		}
		wg.Wait()

		Convey("Then tokens are exactly 1..N", func() {
			seen := map[int]bool{}
			for _, o := range outcomes {
				So(o.Status, ShouldEqual, model.StatusRegistered)
				So(seen[o.Token], ShouldBeFalse)
				seen[o.Token] = true
			}
			for i := 1; i <= n; i++ {
				So(seen[i], ShouldBeTrue)
			}
		})
	})
}

func TestInsertConflictIsAlreadyRegistered(t *testing.T) {
	Convey("Given a store whose uniqueness constraint rejects a request that passed the pre-check", t, func() {
		ctx := context.Background()
		events := &memEvents{}
		students := &memStudents{}
		event := seedEvent(t, events, false, 1)
		s := seedStudent(t, students, "Race", "race@campus.edu")

		regs := &memRegs{unique: true}
		svc := service.NewRegistrationService(events, students, regs)
		first, err := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})
		So(err, ShouldBeNil)
		So(first, ShouldResemble, model.Registered(1))

		regs.staleFinds = 1
		second, err := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})

		Convey("Then the constraint violation is reported with the winner's token", func() {
			So(err, ShouldBeNil)
			So(second, ShouldResemble, model.AlreadyRegistered(1))
			So(regs.count(), ShouldEqual, 1)
		})
	})
}

func TestRegistrationFailures(t *testing.T) {
	Convey("Given a registration store that fails", t, func() {
		ctx := context.Background()
		events := &memEvents{}
		students := &memStudents{}
		event := seedEvent(t, events, false, 1)
		s := seedStudent(t, students, "F", "f@campus.edu")
		req := model.RegisterRequest{StudentID: s.ID, Description: "d"}

		Convey("When the duplicate lookup errors", func() {
			regs := &memRegs{findErr: errStoreDown}
			out, err := service.NewRegistrationService(events, students, regs).Register(ctx, event.ID, req)

			Convey("Then the attempt fails without inserting", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusRegistrationFailed)
				So(errors.Is(out.Err, errStoreDown), ShouldBeTrue)
				So(out.Token, ShouldEqual, 0)
				So(regs.inserts, ShouldEqual, 0)
			})
		})

		Convey("When the insert errors", func() {
			regs := &memRegs{insertErr: errStoreDown}
			out, err := service.NewRegistrationService(events, students, regs).Register(ctx, event.ID, req)

			Convey("Then the attempt fails with no token", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusRegistrationFailed)
				So(out.Token, ShouldEqual, 0)
				So(regs.count(), ShouldEqual, 0)
			})
		})

		Convey("When the student lookup errors", func() {
			failing := &memStudents{byID: students.byID, err: errStoreDown}
			out, err := service.NewRegistrationService(events, failing, &memRegs{}).Register(ctx, event.ID, req)

			Convey("Then it is a failed outcome, not a caller error", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusRegistrationFailed)
			})
		})
	})
}

func TestRegistrationSideEffects(t *testing.T) {
	Convey("Given a notifier and metrics", t, func() {
		ctx := context.Background()
		events := &memEvents{}
		students := &memStudents{}
		event := seedEvent(t, events, false, 1)
		s := seedStudent(t, students, "N", "n@campus.edu")
		notifier := &recordingNotifier{err: errors.New("discord down")}
		metrics := telemetry.NewMetrics()

		svc := service.NewRegistrationService(events, students, &memRegs{},
			service.WithNotifier(notifier), service.WithMetrics(metrics))

		first, _ := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})
		second, _ := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})
		So(svc.Wait(ctx), ShouldBeNil)

		Convey("Then a failing notifier does not change the outcome", func() {
			So(first, ShouldResemble, model.Registered(1))
			So(second, ShouldResemble, model.AlreadyRegistered(1))
		})

		Convey("Then organisers are notified once, with the token", func() {
			So(len(notifier.regs), ShouldEqual, 1)
			So(notifier.regs[0].Token, ShouldEqual, 1)
			So(notifier.regs[0].Email, ShouldEqual, "n@campus.edu")
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a student who has not registered", t, func() {
		ctx := context.Background()
		st := openStores(t)
		event := seedEvent(t, st.events, false, 1)
		s := seedStudent(t, st.students, "L", "l@campus.edu")
		svc := service.NewRegistrationService(st.events, st.students, st.regs, service.WithTokenSequencer(st.regs))

		_, err := svc.Lookup(ctx, event.ID, s.ID)
		So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)

		Convey("When they register", func() {
			_, err := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})
			So(err, ShouldBeNil)

			Convey("Then Lookup returns their token", func() {
				reg, err := svc.Lookup(ctx, event.ID, s.ID)
				So(err, ShouldBeNil)
				So(reg.Token, ShouldEqual, 1)
			})
		})
	})
}

func TestTokenHelpers(t *testing.T) {
	Convey("Given an event with two registrations", t, func() {
		ctx := context.Background()
		regs := &memRegs{}
		_ = regs.Insert(ctx, &model.Registration{EventID: "e", Email: "a@x.io", Token: 1})
		_ = regs.Insert(ctx, &model.Registration{EventID: "e", Email: "b@x.io", TeamName: "Owls", Token: 2})
		svc := service.NewRegistrationService(&memEvents{}, &memStudents{}, regs)

		Convey("Then the next token is 3 and other events start at 1", func() {
			next, err := svc.NextToken(ctx, "e")
			So(err, ShouldBeNil)
			So(next, ShouldEqual, 3)
			next, err = svc.NextToken(ctx, "other")
			So(err, ShouldBeNil)
			So(next, ShouldEqual, 1)
		})

		Convey("Then existing keys report their token", func() {
			tok, found, err := svc.ExistingToken(ctx, "e", model.ByTeamName("Owls"))
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(tok, ShouldEqual, 2)

			_, found, err = svc.ExistingToken(ctx, "e", model.ByEmail("c@x.io"))
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})
	})
}

func TestRegistrationClock(t *testing.T) {
	Convey("Given a registration service with a fixed clock", t, func() {
		ctx := context.Background()
		st := openStores(t)
		event := seedEvent(t, st.events, false, 1)
		s := seedStudent(t, st.students, "Clock", "clock@campus.edu")
		fixed := time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC)
		svc := service.NewRegistrationService(st.events, st.students, st.regs,
			service.WithTokenSequencer(st.regs),
			service.WithClock(func() time.Time { return fixed }),
		)

		Convey("When a student registers", func() {
			out, err := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "on time"})
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, model.StatusRegistered)

			Convey("Then the stored row is stamped with the clock's time", func() {
				reg, err := svc.Lookup(ctx, event.ID, s.ID)
				So(err, ShouldBeNil)
				So(reg.CreatedAt.Equal(fixed), ShouldBeTrue)
			})
		})
	})
}

// blockingNotifier holds every send until release is closed.
type blockingNotifier struct {
	release chan struct{}
	sent    chan model.Registration
}

func (n *blockingNotifier) NotifyRegistration(ctx context.Context, _ *model.Event, reg *model.Registration) error {
	select {
	case <-n.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	n.sent <- *reg
	return nil
}

func TestSlowNotifierDoesNotDelayOutcome(t *testing.T) {
	Convey("Given a notifier that blocks until released", t, func() {
		ctx := context.Background()
		events := &memEvents{}
		students := &memStudents{}
		event := seedEvent(t, events, false, 1)
		s := seedStudent(t, students, "Slow", "slow@campus.edu")
		notifier := &blockingNotifier{release: make(chan struct{}), sent: make(chan model.Registration, 1)}
		svc := service.NewRegistrationService(events, students, &memRegs{}, service.WithNotifier(notifier))

		Convey("When a student registers", func() {
			start := time.Now()
			out, err := svc.Register(ctx, event.ID, model.RegisterRequest{StudentID: s.ID, Description: "d"})
			elapsed := time.Since(start)

			Convey("Then the outcome returns without waiting for the notifier", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, model.Registered(1))
				So(elapsed, ShouldBeLessThan, time.Second)

				waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
				defer cancel()
				So(svc.Wait(waitCtx), ShouldEqual, context.DeadlineExceeded)
			})

			Convey("Then the notification is delivered once released", func() {
				close(notifier.release)
				So(svc.Wait(ctx), ShouldBeNil)
				reg := <-notifier.sent
				So(reg.Token, ShouldEqual, 1)
				So(reg.Email, ShouldEqual, "slow@campus.edu")
			})
		})
	})
}
