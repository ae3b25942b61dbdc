package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"github.com/vnkhanh/podcastr-backend/models"
)

// BuildFeed dựng RSS 2.0 của một podcaster từ danh sách podcast (mới nhất trước).
func BuildFeed(baseURL string, user models.User, podcasts []models.Podcast) (string, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	now := time.Now()
	link := fmt.Sprintf("%s/api/podcasters/%s", baseURL, user.ExternalID)

	p := podcast.New(
		fmt.Sprintf("%s's Podcasts", user.Name),
		link,
		fmt.Sprintf("AI-voiced podcasts created by %s.", user.Name),
		&now, &now,
	)
	p.AddAuthor(user.Name, user.Email)
	if user.ImageURL != "" {
		p.AddImage(user.ImageURL)
	}

	for _, pc := range podcasts {
		if pc.AudioURL == nil || *pc.AudioURL == "" {
			continue
		}
		created := pc.CreatedAt
		description := pc.PodcastDescription
		if description == "" {
			description = pc.PodcastTitle
		}
		item := podcast.Item{
			Title:       pc.PodcastTitle,
			Description: description,
			Link:        fmt.Sprintf("%s/api/podcasts/%s", baseURL, pc.ID),
			PubDate:     &created,
		}
		item.AddEnclosure(*pc.AudioURL, podcast.MP3, 0)
		item.AddDuration(int64(pc.AudioDuration))
		if pc.ImageURL != nil && *pc.ImageURL != "" {
			item.AddImage(*pc.ImageURL)
		}
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("feed item %s: %w", pc.ID, err)
		}
	}

	return p.String(), nil
}
