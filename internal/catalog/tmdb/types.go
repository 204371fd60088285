package tmdb

import "strconv"

// Candidate is one search result in catalog-native ranking order.
type Candidate struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	FirstAir    string  `json:"first_air_date"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int64 `json:"genre_ids"`
}

// DisplayName returns the title field for movies or the name field for TV.
func (c Candidate) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Year extracts the release/first-air year, or 0 when unknown.
func (c Candidate) Year() int {
	date := c.ReleaseDate
	if date == "" {
		date = c.FirstAir
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

type searchResponse struct {
	Page    int         `json:"page"`
	Results []Candidate `json:"results"`
}

// MovieDetail extends a movie candidate with credit-derived fields.
type MovieDetail struct {
	Candidate
	Runtime int    `json:"runtime"`
	IMDBID  string `json:"imdb_id"`
	Credits struct {
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// Director returns the first crew member credited as director.
func (d *MovieDetail) Director() string {
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" {
			return member.Name
		}
	}
	return ""
}

// TVDetail extends a TV candidate with show-level fields and external ids.
type TVDetail struct {
	Candidate
	NumberOfSeasons int    `json:"number_of_seasons"`
	Status          string `json:"status"`
	Networks        []struct {
		Name string `json:"name"`
	} `json:"networks"`
	CreatedBy []struct {
		Name string `json:"name"`
	} `json:"created_by"`
	ExternalIDs struct {
		IMDBID string `json:"imdb_id"`
		TVDBID int64  `json:"tvdb_id"`
	} `json:"external_ids"`
}

// Network returns the first broadcast network name, if any.
func (d *TVDetail) Network() string {
	if len(d.Networks) == 0 {
		return ""
	}
	return d.Networks[0].Name
}

// Creators returns the credited creator names.
func (d *TVDetail) Creators() []string {
	names := make([]string, 0, len(d.CreatedBy))
	for _, creator := range d.CreatedBy {
		if creator.Name != "" {
			names = append(names, creator.Name)
		}
	}
	return names
}

// FindResult holds the records matched by a find-by-external-id lookup.
type FindResult struct {
	MovieResults []Candidate `json:"movie_results"`
	TVResults    []Candidate `json:"tv_results"`
}
