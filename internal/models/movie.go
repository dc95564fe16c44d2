package models

// Movie 影片列表中的单个影片
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int64 `json:"genre_ids"`
}

// MovieResponse 分页的影片列表
type MovieResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre 影片分类
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreList 上游 /genre/movie/list 的响应
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// MovieDetails 影片详情
type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	Tagline      string  `json:"tagline"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	Status       string  `json:"status"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	Genres       []Genre `json:"genres"`
	Homepage     string  `json:"homepage"`
	IMDbID       string  `json:"imdb_id"`
}
