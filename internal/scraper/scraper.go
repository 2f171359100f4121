package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/SherClockHolmes/webpush-go"

	"room-status-backend/config"
	"room-status-backend/internal/availability"
	"room-status-backend/internal/notification"
	"room-status-backend/internal/parse"
	"room-status-backend/internal/room"
	"room-status-backend/internal/snapshot"
	"room-status-backend/internal/store"
)

// Service orchestrates the booking-calendar scraping process.
type Service struct {
	cfg        *config.Config
	store      store.Store
	snaps      *snapshot.Cache
	client     *http.Client
	workerPool *notification.WorkerPool
}

// NewService creates and initializes a new scraper service.
func NewService(cfg *config.Config, store store.Store, snaps *snapshot.Cache) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Scraper.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Scraper.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Scraper will not use a proxy.", cfg.Scraper.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, store.DB(), &webpushOptions)

	return &Service{
		cfg:   cfg,
		store: store,
		snaps: snaps,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		workerPool: workerPool,
	}
}

// Run starts the scraping process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Scraper.Enabled {
		log.Println("Scraper is disabled. Not starting.")
		return
	}
	log.Println("Starting scraper service...")

	s.workerPool.Start(ctx)

	s.ScrapeOnce(ctx)

	timer := time.NewTimer(s.cfg.Scraper.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scraper service shutting down.")
			return
		case <-timer.C:
			s.ScrapeOnce(ctx)
			timer.Reset(s.cfg.Scraper.Interval)
		}
	}
}

type scrapeResult struct {
	room room.ID
	snap snapshot.RoomSnapshot
	err  error
}

// ScrapeOnce performs a single round of scraping: every room is fetched
// concurrently, and a failure in one room never blocks the others.
func (s *Service) ScrapeOnce(ctx context.Context) {
	log.Println("Executing scrape cycle...")
	now := time.Now().In(s.cfg.Scraper.Location)

	rooms := room.All()
	results := make(chan scrapeResult, len(rooms))
	var wg sync.WaitGroup
	for _, id := range rooms {
		wg.Add(1)
		go func(id room.ID) {
			defer wg.Done()
			snap, err := s.scrapeRoom(ctx, id, now)
			results <- scrapeResult{room: id, snap: snap, err: err}
		}(id)
	}
	wg.Wait()
	close(results)

	var snaps []snapshot.RoomSnapshot
	for res := range results {
		if res.err != nil {
			log.Printf("Error scraping room %s: %v", res.room, res.err)
			continue
		}
		s.snaps.Put(res.snap)
		snaps = append(snaps, res.snap)
	}

	if len(snaps) == 0 {
		log.Println("Scrape cycle aborted: no room could be scraped. Room states will not be updated.")
		return
	}

	becameFree, err := s.store.UpdateRoomStates(ctx, now, snaps)
	if err != nil {
		log.Printf("Error updating room states: %v", err)
		return
	}

	if len(becameFree) > 0 {
		log.Printf("Dispatching notifications for %d rooms", len(becameFree))
		for _, code := range becameFree {
			s.workerPool.Dispatch(code)
		}
	}

	log.Printf("Scrape cycle finished: %d/%d rooms scraped.", len(snaps), len(rooms))
}

// scrapeRoom fetches and parses one room's calendar page for the given
// date, then infers its current status.
func (s *Service) scrapeRoom(ctx context.Context, id room.ID, now time.Time) (snapshot.RoomSnapshot, error) {
	rows, err := s.fetchRows(ctx, id, now)
	if err != nil {
		return snapshot.RoomSnapshot{}, err
	}

	sched, err := parse.DaySchedule(rows, now, s.cfg.Scraper.Location)
	if err != nil {
		return snapshot.RoomSnapshot{}, fmt.Errorf("parsing schedule: %w", err)
	}

	return snapshot.RoomSnapshot{
		Room:      id,
		Location:  id.Location(),
		Schedule:  sched,
		Status:    availability.Infer(sched, now),
		ScrapedAt: now,
	}, nil
}

// fetchRows downloads the booking table for a room and date and extracts
// its raw rows.
func (s *Service) fetchRows(ctx context.Context, id room.ID, date time.Time) ([]parse.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.calendarURL(id, date), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range s.cfg.Scraper.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar page: %w", err)
	}

	var rows []parse.Row
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells parse.Row
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, td.Text())
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows, nil
}

// calendarURL builds the per-room, per-date booking page URL.
func (s *Service) calendarURL(id room.ID, date time.Time) string {
	u, err := url.Parse(s.cfg.Scraper.CalendarURL)
	if err != nil {
		// CalendarURL is validated at config load.
		return s.cfg.Scraper.CalendarURL
	}
	q := u.Query()
	q.Set("room", string(id))
	q.Set("thedate", date.Format("2006/01/02"))
	u.RawQuery = q.Encode()
	return u.String()
}
