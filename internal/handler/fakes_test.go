package handler

import (
    "context"
    "io"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "go.mongodb.org/mongo-driver/v2/bson"

    "github.com/iliyamo/cinema-catalog/internal/model"
    q "github.com/iliyamo/cinema-catalog/internal/queue"
    "github.com/iliyamo/cinema-catalog/internal/repository"
)

// memMovies evaluates MovieFilter the way the Mongo filter does: keyword as a
// case-insensitive substring of name or description, category by equality.
type memMovies struct {
    mu     sync.Mutex
    movies []model.Movie
    fail   error
}

func matches(f repository.MovieFilter, m model.Movie) bool {
    if f.CategoryID != "" && m.CategoryID != f.CategoryID {
        return false
    }
    kw := strings.ToLower(strings.TrimSpace(f.Keyword))
    if kw == "" {
        return true
    }
    return strings.Contains(strings.ToLower(m.Name), kw) || strings.Contains(strings.ToLower(m.Description), kw)
}

func (s *memMovies) filtered(f repository.MovieFilter) []model.Movie {
    var out []model.Movie
    for _, m := range s.movies {
        if matches(f, m) {
            out = append(out, m)
        }
    }
    return out
}

func (s *memMovies) Count(_ context.Context, f repository.MovieFilter) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail != nil {
        return 0, s.fail
    }
    return int64(len(s.filtered(f))), nil
}

func (s *memMovies) List(_ context.Context, f repository.MovieFilter, page repository.Page) ([]model.Movie, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail != nil {
        return nil, s.fail
    }
    all := s.filtered(f)
    out := make([]model.Movie, 0)
    if page.Limit == 0 {
        return append(out, all...), nil
    }
    start := int(page.Offset())
    if start >= len(all) {
        return out, nil
    }
    end := start + page.Limit
    if end > len(all) {
        end = len(all)
    }
    return append(out, all[start:end]...), nil
}

func (s *memMovies) index(ref repository.MovieRef) int {
    id := ref.String()
    for i, m := range s.movies {
        if m.UID == id || m.ID.Hex() == id {
            return i
        }
    }
    return -1
}

func (s *memMovies) FindByRef(_ context.Context, ref repository.MovieRef) (*model.Movie, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail != nil {
        return nil, s.fail
    }
    i := s.index(ref)
    if i < 0 {
        return nil, repository.NotFound("movie")
    }
    m := s.movies[i]
    return &m, nil
}

func (s *memMovies) Create(_ context.Context, req model.CreateMovieRequest) (*model.Movie, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail != nil {
        return nil, s.fail
    }
    now := time.Now().UTC().Truncate(time.Millisecond)
    m := model.Movie{
        ID:          bson.NewObjectID(),
        UID:         uuid.NewString(),
        Name:        req.Name,
        Description: req.Description,
        ReleaseDate: req.ReleaseDate,
        Rating:      req.Rating,
        CategoryID:  req.CategoryID,
        CreatedAt:   now,
        UpdatedAt:   now,
    }
    s.movies = append(s.movies, m)
    return &m, nil
}

func (s *memMovies) Update(_ context.Context, ref repository.MovieRef, req model.UpdateMovieRequest) (*model.Movie, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    i := s.index(ref)
    if i < 0 {
        return nil, repository.NotFound("movie")
    }
    m := &s.movies[i]
    if req.Name != nil {
        m.Name = *req.Name
    }
    if req.Description != nil {
        m.Description = *req.Description
    }
    if req.ReleaseDate != nil {
        m.ReleaseDate = req.ReleaseDate
    }
    if req.Rating != nil {
        m.Rating = req.Rating
    }
    if req.CategoryID != nil {
        m.CategoryID = *req.CategoryID
    }
    m.UpdatedAt = time.Now().UTC()
    out := *m
    return &out, nil
}

func (s *memMovies) SetImage(_ context.Context, ref repository.MovieRef, path string) (*model.Movie, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    i := s.index(ref)
    if i < 0 {
        return nil, repository.NotFound("movie")
    }
    s.movies[i].Image = path
    out := s.movies[i]
    return &out, nil
}

func (s *memMovies) Delete(_ context.Context, ref repository.MovieRef) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    i := s.index(ref)
    if i < 0 {
        return repository.NotFound("movie")
    }
    s.movies = append(s.movies[:i], s.movies[i+1:]...)
    return nil
}

type memGenres struct {
    mu     sync.Mutex
    genres []model.Genre
}

func (s *memGenres) List(context.Context) ([]model.Genre, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return append([]model.Genre{}, s.genres...), nil
}

func (s *memGenres) FindByID(_ context.Context, id bson.ObjectID) (*model.Genre, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, g := range s.genres {
        if g.ID == id {
            return &g, nil
        }
    }
    return nil, repository.NotFound("genre")
}

func (s *memGenres) FindByNameLike(_ context.Context, name string) (*model.Genre, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, g := range s.genres {
        if strings.Contains(strings.ToLower(g.Name), strings.ToLower(name)) {
            return &g, nil
        }
    }
    return nil, repository.NotFound("genre")
}

func (s *memGenres) Create(_ context.Context, req model.GenreRequest) (*model.Genre, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g := model.Genre{ID: bson.NewObjectID(), Name: req.Name, CreatedAt: time.Now().UTC()}
    g.UpdatedAt = g.CreatedAt
    s.genres = append(s.genres, g)
    return &g, nil
}

func (s *memGenres) Rename(_ context.Context, id bson.ObjectID, name string) (*model.Genre, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for i := range s.genres {
        if s.genres[i].ID == id {
            s.genres[i].Name = name
            g := s.genres[i]
            return &g, nil
        }
    }
    return nil, repository.NotFound("genre")
}

func (s *memGenres) Delete(_ context.Context, id bson.ObjectID) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for i := range s.genres {
        if s.genres[i].ID == id {
            s.genres = append(s.genres[:i], s.genres[i+1:]...)
            return nil
        }
    }
    return repository.NotFound("genre")
}

// memSeances answers from a uid set; uids in broken fail the lookup.
type memSeances struct {
    mu     sync.Mutex
    uids   map[string]bool
    broken map[string]bool
}

func (s *memSeances) HasSeances(_ context.Context, uid string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.broken[uid] {
        return false, io.ErrUnexpectedEOF
    }
    return s.uids[uid], nil
}

type memBlobs struct {
    mu    sync.Mutex
    names []string
    data  map[string]string
}

func (b *memBlobs) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
    bs, err := io.ReadAll(r)
    if err != nil {
        return "", err
    }
    b.mu.Lock()
    defer b.mu.Unlock()
    if b.data == nil {
        b.data = map[string]string{}
    }
    b.names = append(b.names, name)
    b.data[name] = string(bs)
    return "/media/" + name, nil
}

type memPublisher struct {
    mu     sync.Mutex
    events []q.ReservationRequestedEvent
    fail   error
}

func (p *memPublisher) PublishReservationRequested(_ context.Context, ev q.ReservationRequestedEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.fail != nil {
        return p.fail
    }
    p.events = append(p.events, ev)
    return nil
}
