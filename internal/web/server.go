// Package web is the browser-facing gateway: signin, restaurant browse
// and the reserve form, rendered server-side. It holds no reservation
// logic of its own; drafts are validated by the booking package and
// submitted through the API client.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tjaksic234/tabletap/internal/auth"
	"github.com/tjaksic234/tabletap/internal/booking"
	"github.com/tjaksic234/tabletap/internal/catalog"
	"github.com/tjaksic234/tabletap/internal/history"
	"github.com/tjaksic234/tabletap/internal/session"
	"github.com/tjaksic234/tabletap/internal/tabletap"
)

//go:embed templates/*.html
var fs embed.FS

type Server struct {
	Auth    *auth.Store
	Vault   *session.Vault
	History *history.Repo
	API     *tabletap.Client
	Log     zerolog.Logger

	// DevMode verifies signin against the local user store instead of
	// the upstream auth endpoint; DevToken is the bearer token used for
	// API calls in that mode.
	DevMode  bool
	DevToken string
}

type pageData struct {
	Title string
	Sess  auth.Session
	Flash string

	Restaurants []catalog.Restaurant
	Cuisines    []catalog.Cuisine
	Selected    map[catalog.Cuisine]bool
	Query       string
	Sort        string

	Restaurant catalog.Restaurant
	Tables     []booking.Table

	Table        booking.Table
	Draft        booking.Draft
	Slots        []booking.Slot
	Durations    []booking.Duration
	GuestChoices []int

	Reservations []history.Reservation
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/signin", s.handleSigninPage)
	r.Post("/signin", s.handleSignin)
	r.Get("/signout", s.handleSignout)

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireAuth)
		r.Get("/", s.handleDashboard)
		r.Get("/restaurants/{restaurantID}", s.handleRestaurant)
		r.Get("/restaurants/{restaurantID}/tables/{tableID}/reserve", s.handleReservePage)
		r.Post("/restaurants/{restaurantID}/tables/{tableID}/reserve", s.handleReserve)
		r.Get("/reservations", s.handleHistory)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleSigninPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "templates/signin.html", pageData{Title: "Sign In"})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")
	password := r.FormValue("password")

	var sess auth.Session
	if s.DevMode {
		// Local credentials provider, same role the hardcoded dev login
		// played in the original UI.
		userID, err := s.Auth.Authenticate(r.Context(), email, password)
		if err != nil {
			s.render(w, "templates/signin.html", pageData{Title: "Sign In", Flash: "Invalid email or password."})
			return
		}
		sess = auth.Session{UserID: userID, Email: email}
	} else {
		upstream, err := s.API.Login(r.Context(), email, password)
		if err != nil {
			s.Log.Warn().Err(err).Msg("upstream signin failed")
			s.render(w, "templates/signin.html", pageData{Title: "Sign In", Flash: "Invalid email or password."})
			return
		}
		userID, err := s.Auth.UserByEmail(r.Context(), upstream.Email)
		if err != nil {
			s.render(w, "templates/signin.html", pageData{
				Title: "Sign In",
				Flash: "No local account for that email. Create one with `tabletap user add`.",
			})
			return
		}
		if err := s.Vault.Save(r.Context(), userID, upstream.Email, upstream.Token); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sess = auth.Session{UserID: userID, Email: upstream.Email}
	}

	if err := s.Auth.SetSession(w, r, sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/signin", http.StatusFound)
}

// api returns the client bound to the caller's upstream token.
func (s *Server) api(ctx context.Context, sess auth.Session) (*tabletap.Client, error) {
	if s.DevMode {
		return s.API.WithSession(s.DevToken), nil
	}
	stored, err := s.Vault.Load(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("no upstream session, sign in again: %w", err)
	}
	return s.API.WithSession(stored.Token), nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	api, err := s.api(r.Context(), sess)
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	all, err := api.Restaurants(r.Context())
	if err != nil {
		s.renderError(w, sess, err)
		return
	}

	q := r.URL.Query()
	filter := catalog.Filter{Query: q.Get("q")}
	selected := map[catalog.Cuisine]bool{}
	for _, raw := range q["cuisine"] {
		if c, ok := catalog.ParseCuisine(raw); ok {
			filter.Cuisines = append(filter.Cuisines, c)
			selected[c] = true
		}
	}
	order := catalog.SortOrder(q.Get("sort"))

	s.render(w, "templates/dashboard.html", pageData{
		Title:       "Restaurants",
		Sess:        sess,
		Restaurants: catalog.Apply(all, filter, order),
		Cuisines:    catalog.Cuisines(),
		Selected:    selected,
		Query:       filter.Query,
		Sort:        string(order),
	})
}

func (s *Server) handleRestaurant(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	api, err := s.api(r.Context(), sess)
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}
	restaurantID := chi.URLParam(r, "restaurantID")

	restaurant, err := api.Restaurant(r.Context(), restaurantID)
	if err != nil {
		s.renderError(w, sess, err)
		return
	}
	tables, err := api.Tables(r.Context(), restaurantID)
	if err != nil {
		s.renderError(w, sess, err)
		return
	}

	s.render(w, "templates/restaurant.html", pageData{
		Title:      restaurant.Name,
		Sess:       sess,
		Restaurant: restaurant,
		Tables:     tables,
	})
}

func (s *Server) handleReservePage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	table, err := s.lookupTable(r, sess)
	if err != nil {
		s.renderError(w, sess, err)
		return
	}
	s.renderReserve(w, sess, table, booking.NewDraft(table, sess.Email), "")
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	table, err := s.lookupTable(r, sess)
	if err != nil {
		s.renderError(w, sess, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flow := booking.NewFlow(table, sess.Email)
	_ = flow.Update(func(d booking.Draft) booking.Draft {
		return draftFromForm(d, r.PostForm)
	})

	api, err := s.api(r.Context(), sess)
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	req, err := flow.Submit(r.Context(), time.Now(), api)
	if err != nil {
		// Draft survives every failure path; the form re-renders with
		// what the user typed plus a message.
		var verr *booking.ValidationError
		var rej *tabletap.RejectionError
		switch {
		case errors.As(err, &verr):
			s.renderReserve(w, sess, table, flow.Draft(), verr.Error())
		case errors.As(err, &rej):
			msg := "The reservation was not accepted. Please try again."
			if rej.Message != "" {
				msg = rej.Message
			}
			s.renderReserve(w, sess, table, flow.Draft(), msg)
		default:
			s.Log.Error().Err(err).Msg("reservation submission failed")
			s.renderReserve(w, sess, table, flow.Draft(), "Failed to create reservation. Please try again.")
		}
		return
	}

	rec := history.FromRequest(sess.UserID, "", req, flow.IdempotencyKey())
	if _, err := s.History.Create(r.Context(), rec); err != nil {
		s.Log.Error().Err(err).Msg("record reservation")
	}
	http.Redirect(w, r, "/reservations", http.StatusFound)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	list, err := s.History.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		s.renderError(w, sess, err)
		return
	}
	s.render(w, "templates/reservations.html", pageData{
		Title:        "Your Reservations",
		Sess:         sess,
		Reservations: list,
	})
}

func (s *Server) lookupTable(r *http.Request, sess auth.Session) (booking.Table, error) {
	api, err := s.api(r.Context(), sess)
	if err != nil {
		return booking.Table{}, err
	}
	restaurantID := chi.URLParam(r, "restaurantID")
	tableID := chi.URLParam(r, "tableID")
	tables, err := api.Tables(r.Context(), restaurantID)
	if err != nil {
		return booking.Table{}, err
	}
	for _, t := range tables {
		if t.ID == tableID {
			return t, nil
		}
	}
	return booking.Table{}, fmt.Errorf("table %s not found at restaurant %s", tableID, restaurantID)
}

func (s *Server) renderReserve(w http.ResponseWriter, sess auth.Session, table booking.Table, draft booking.Draft, flash string) {
	s.render(w, "templates/reserve.html", pageData{
		Title:        "Make a Reservation",
		Sess:         sess,
		Flash:        flash,
		Table:        table,
		Draft:        draft,
		Slots:        booking.Slots(),
		Durations:    booking.Durations(),
		GuestChoices: slices.Collect(booking.GuestOptions(table)),
	})
}

func (s *Server) renderError(w http.ResponseWriter, sess auth.Session, err error) {
	s.Log.Error().Err(err).Msg("page error")
	w.WriteHeader(http.StatusBadGateway)
	s.render(w, "templates/error.html", pageData{Title: "Error", Sess: sess, Flash: err.Error()})
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	t, err := template.ParseFS(fs, "templates/base.html", name)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.Log.Error().Err(err).Str("template", name).Msg("render")
	}
}

// Start serves until the context is canceled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("web gateway listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
