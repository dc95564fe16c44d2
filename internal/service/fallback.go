package service

import (
	"fmt"
	"movie-cache/internal/models"
)

// 上游不可用时返回的演示数据，不会写入缓存

const demoOverview = "Dados de demonstração. Configure TMDB_API_KEY para resultados reais."

func demoMovie(id int64, title string, vote float64, genres ...int64) models.Movie {
	return models.Movie{
		ID:          id,
		Title:       title,
		Overview:    demoOverview,
		ReleaseDate: "2024-01-01",
		VoteAverage: vote,
		VoteCount:   int64(vote * 100),
		Popularity:  vote * 10,
		GenreIDs:    genres,
	}
}

func singlePage(page int, movies ...models.Movie) *models.MovieResponse {
	return &models.MovieResponse{
		Page:         page,
		Results:      movies,
		TotalPages:   1,
		TotalResults: len(movies),
	}
}

func fallbackMovieList(page int) *models.MovieResponse {
	return singlePage(page,
		demoMovie(1, "Filme Popular 1", 8.5, 28, 12),
		demoMovie(2, "Filme Popular 2", 7.8, 35, 10749),
	)
}

func fallbackGenreMovies(genreID int64, page int) *models.MovieResponse {
	return singlePage(page,
		demoMovie(genreID*100, fmt.Sprintf("Filme de Gênero %d", genreID), 7.5, genreID),
	)
}

func fallbackSearch(query string, page int) *models.MovieResponse {
	return singlePage(page,
		demoMovie(999, fmt.Sprintf("Resultado para %q", query), 8.0, 28),
	)
}

var defaultGenres = []models.Genre{
	{ID: 28, Name: "Ação"},
	{ID: 12, Name: "Aventura"},
	{ID: 16, Name: "Animação"},
	{ID: 35, Name: "Comédia"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentário"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Família"},
	{ID: 14, Name: "Fantasia"},
	{ID: 36, Name: "História"},
	{ID: 27, Name: "Terror"},
	{ID: 10402, Name: "Música"},
	{ID: 9648, Name: "Mistério"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "Ficção científica"},
	{ID: 10770, Name: "Cinema TV"},
	{ID: 53, Name: "Thriller"},
	{ID: 10752, Name: "Guerra"},
	{ID: 37, Name: "Faroeste"},
}

func fallbackGenres() *models.GenreList {
	genres := make([]models.Genre, len(defaultGenres))
	copy(genres, defaultGenres)
	return &models.GenreList{Genres: genres}
}
