// Package seed fills an empty database with demo accounts, podcasts, episodes,
// subscriptions and comments. Every step skips work that is already done, so
// running it twice leaves the data unchanged.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"
)

type account struct {
	email, name, password string
	role                  policy.Role
}

var accounts = []account{
	{"admin@podcasthub.com", "Admin User", "Admin123!", policy.RoleAdmin},
	{"john.podcaster@example.com", "John Podcast", "John123!", policy.RolePodcaster},
	{"sarah.creator@example.com", "Sarah Creator", "Sarah123!", policy.RolePodcaster},
	{"mike.radio@example.com", "Mike Radio", "Mike123!", policy.RolePodcaster},
	{"emma.voice@example.com", "Emma Voice", "Emma123!", policy.RolePodcaster},
	{"alice.listener@example.com", "Alice L", "Alice123!", policy.RoleListener},
	{"bob.fan@example.com", "Bob Fan", "BobFan123!", policy.RoleListener},
	{"carol.user@example.com", "Carol User", "Carol123!", policy.RoleListener},
	{"david.listener@example.com", "David L", "David123!", policy.RoleListener},
	{"eve.subscriber@example.com", "Eve Sub", "EveSub123!", policy.RoleListener},
}

type show struct {
	title, description string
	episodes           []string
	audio              []string
}

var shows = []show{
	{
		title:       "Moonshot",
		description: "Peter Diamandis explores exponential technologies and moonshot thinking with the world's top entrepreneurs, innovators, and thought leaders.",
		episodes: []string{
			"This Week in AI: NVIDIA's Most Powerful Chip, Robotics Reach",
			"The Singularity is Here: AI is Solving Math, Sora Outpaces Chat-GPT",
			"Money After AI: Meet the New Digital Dollar Built for the Internet \"Stablecoins\"",
			"OpenAI vs. Grok: The Race to Build the Everything App",
			"The AI War: OpenAI Ads & Sora 2, Grok Partners With US Government",
		},
		audio: []string{"moonshot_episode_1.mp3", "moonshot_episode_2.mp3", "moonshot_episode_3.mp3", "moonshot_episode_4.mp3", "moonshot_episode_5.mp3"},
	},
	{
		title:       "TED Talks Daily",
		description: "Every weekday, TED Talks Daily brings you the latest talks in audio. Join host and journalist Elise Hu for thought-provoking ideas on every subject imaginable.",
		episodes: []string{
			"TED Talks Daily Book Club: You are not alone in your loneliness | Jonny Sun",
			"Give yourself permission to be creative | Ethan Hawke",
			"How satellites are supporting farmers across Africa | Catherine Nakalembe",
			"Touchdown! The flag football movement is here | Troy Vincent Sr.",
			"How to pull the emergency brake on global warming | Mohamed A. Sultan",
		},
		audio: []string{"ted_episode_1.mp3", "ted_episode_2.mp3", "ted_episode_3.mp3", "ted_episode_4.mp3", "ted_episode_5.mp3"},
	},
	{
		title:       "The Daily",
		description: "This is what the news should sound like. The biggest stories of our time, told by the best journalists in the world. Hosted by Michael Barbaro and Sabrina Tavernise.",
		episodes:    []string{"The Latest on Climate Change Policy", "Inside the 2024 Presidential Race", "The Supreme Court's Biggest Cases"},
		audio:       []string{"moonshot_episode_1.mp3", "ted_episode_2.mp3", "moonshot_episode_3.mp3"},
	},
	{
		title:       "Stuff You Should Know",
		description: "If you've ever wanted to know about champagne, satanism, the Stonewall Uprising, chaos theory, LSD, El Nino, true crime and Rosa Parks then look no further.",
		episodes:    []string{"How Bitcoin Works", "The Science of Sleep", "What Makes a Cult a Cult?"},
		audio:       []string{"ted_episode_1.mp3", "moonshot_episode_2.mp3", "ted_episode_3.mp3"},
	},
	{
		title:       "Freakonomics Radio",
		description: "Discover the hidden side of everything with host Stephen Dubner, co-author of the Freakonomics books. Each week, hear surprising conversations that explore the riddles of everyday life and the weird wrinkles of human nature.",
		episodes:    []string{"Why Is My Life So Hard?", "The Economics of Sleep", "How to Make Better Decisions"},
		audio:       []string{"moonshot_episode_4.mp3", "ted_episode_5.mp3", "moonshot_episode_5.mp3"},
	},
}

var commentTexts = []string{
	"Great episode! Really enjoyed the insights shared here.",
	"This was so informative. Thanks for sharing!",
	"Interesting perspective on the topic. Would love to hear more about this.",
	"One of the best episodes I've listened to in a while!",
	"Learned so much from this. Keep up the great work!",
	"Amazing content! Can't wait for the next episode.",
	"This really made me think differently about the subject.",
	"Excellent discussion. Very well presented.",
	"Loved every minute of this episode!",
	"Thanks for covering this topic. Very relevant and timely.",
	"Fantastic episode! The host did a great job.",
	"This needs more attention. Everyone should listen to this.",
	"Mind-blowing insights! Thanks for this.",
	"Really appreciate the depth of research that went into this.",
	"This episode was exactly what I needed to hear today!",
}

// Repositories is the storage the seeder writes through.
type Repositories struct {
	Users         repository.UserRepository
	Podcasts      repository.PodcastRepository
	Episodes      repository.EpisodeRepository
	Subscriptions repository.SubscriptionRepository
	Comments      repository.CommentRepository
}

type Seeder struct {
	auth         service.AuthService
	repos        Repositories
	audioBaseURL string
	rng          *rand.Rand
	now          func() time.Time
}

// New builds a seeder. Seeded episodes point at audioBaseURL + "/" + file name.
func New(auth service.AuthService, repos Repositories, audioBaseURL string, seed uint64) *Seeder {
	return &Seeder{
		auth:         auth,
		repos:        repos,
		audioBaseURL: audioBaseURL,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:          time.Now,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users, Podcasts, Episodes, Subscriptions, Comments int
}

func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	users, created, err := s.seedUsers(ctx)
	if err != nil {
		return sum, err
	}
	sum.Users = created

	podcasts, created, err := s.seedPodcasts(ctx, users)
	if err != nil {
		return sum, err
	}
	sum.Podcasts = created

	episodes, created, err := s.seedEpisodes(ctx, podcasts)
	if err != nil {
		return sum, err
	}
	sum.Episodes = created

	if sum.Subscriptions, err = s.seedSubscriptions(ctx, users, podcasts); err != nil {
		return sum, err
	}
	if sum.Comments, err = s.seedComments(ctx, users, episodes); err != nil {
		return sum, err
	}
	slog.Info("seed_completed", "users", sum.Users, "podcasts", sum.Podcasts, "episodes", sum.Episodes,
		"subscriptions", sum.Subscriptions, "comments", sum.Comments)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]models.User, int, error) {
	users := make([]models.User, 0, len(accounts))
	created := 0
	for _, a := range accounts {
		u, err := s.auth.Provision(ctx, service.RegisterInput{
			Email: a.email, Password: a.password, DisplayName: a.name, Role: a.role,
		})
		if errors.Is(err, service.ErrEmailInUse) {
			u, err = s.repos.Users.FindByID(ctx, a.email)
		} else if err == nil {
			created++
		}
		if err != nil {
			return nil, created, fmt.Errorf("seed user %s: %w", a.email, err)
		}
		users = append(users, *u)
	}
	return users, created, nil
}

func byRole(users []models.User, role policy.Role) []models.User {
	var out []models.User
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (s *Seeder) seedPodcasts(ctx context.Context, users []models.User) ([]models.Podcast, int, error) {
	existing, err := s.repos.Podcasts.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(existing) > 0 {
		return existing, 0, nil
	}

	podcasters := byRole(users, policy.RolePodcaster)
	if len(podcasters) == 0 {
		return nil, 0, errors.New("seed podcasts: no podcaster accounts")
	}
	out := make([]models.Podcast, 0, len(shows))
	for i, sh := range shows {
		p := models.Podcast{
			Title:       sh.title,
			Description: sh.description,
			CreatorID:   podcasters[i%len(podcasters)].ID,
			CreatedAt:   s.now().AddDate(0, -2, 0).UTC(),
		}
		if err := s.repos.Podcasts.Create(ctx, &p); err != nil {
			return nil, len(out), fmt.Errorf("seed podcast %q: %w", sh.title, err)
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (s *Seeder) seedEpisodes(ctx context.Context, podcasts []models.Podcast) ([]models.Episode, int, error) {
	existing, err := s.repos.Episodes.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(existing) > 0 {
		return existing, 0, nil
	}

	var out []models.Episode
	for _, p := range podcasts {
		sh, ok := findShow(p.Title)
		if !ok {
			continue
		}
		n := min(len(sh.episodes), len(sh.audio))
		for i := 0; i < n; i++ {
			e := models.Episode{
				PodcastID:       p.ID,
				Title:           sh.episodes[i],
				ReleaseDate:     s.now().AddDate(0, 0, -(n-i)*7).UTC(),
				DurationSeconds: int64(20+s.rng.IntN(41)) * 60,
				PlayCount:       int64(1000 + s.rng.IntN(49000)),
				ViewCount:       int64(1500 + s.rng.IntN(73500)),
				AudioURL:        s.audioBaseURL + "/" + sh.audio[i],
			}
			if err := s.repos.Episodes.Create(ctx, &e); err != nil {
				return nil, len(out), fmt.Errorf("seed episode %q: %w", e.Title, err)
			}
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func findShow(title string) (show, bool) {
	for _, sh := range shows {
		if sh.title == title {
			return sh, true
		}
	}
	return show{}, false
}

// seedSubscriptions gives each listener two to four podcasts.
func (s *Seeder) seedSubscriptions(ctx context.Context, users []models.User, podcasts []models.Podcast) (int, error) {
	count, err := s.repos.Subscriptions.Count(ctx)
	if err != nil || count > 0 || len(podcasts) == 0 {
		return 0, err
	}
	created := 0
	for _, listener := range byRole(users, policy.RoleListener) {
		picks := s.rng.Perm(len(podcasts))[:min(2+s.rng.IntN(3), len(podcasts))]
		for _, i := range picks {
			sub := models.Subscription{
				UserID:           listener.ID,
				PodcastID:        podcasts[i].ID,
				SubscriptionDate: s.now().AddDate(0, 0, -(1 + s.rng.IntN(89))).UTC(),
			}
			ok, err := s.repos.Subscriptions.Create(ctx, &sub)
			if err != nil {
				return created, fmt.Errorf("seed subscription: %w", err)
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// seedComments leaves one to five listener comments on roughly 60% of episodes.
func (s *Seeder) seedComments(ctx context.Context, users []models.User, episodes []models.Episode) (int, error) {
	count, err := s.repos.Comments.Count(ctx)
	if err != nil || count > 0 {
		return 0, err
	}
	listeners := byRole(users, policy.RoleListener)
	if len(listeners) == 0 {
		return 0, nil
	}
	created := 0
	for _, e := range episodes {
		if s.rng.IntN(100) >= 60 {
			continue
		}
		picks := s.rng.Perm(len(listeners))[:min(1+s.rng.IntN(5), len(listeners))]
		for _, i := range picks {
			age := time.Duration(1+s.rng.IntN(29))*24*time.Hour + time.Duration(s.rng.IntN(24))*time.Hour
			c := models.Comment{
				EpisodeID:   e.ID,
				UserID:      listeners[i].ID,
				Text:        commentTexts[s.rng.IntN(len(commentTexts))],
				CommentDate: s.now().Add(-age).UTC(),
			}
			if err := s.repos.Comments.Create(ctx, &c); err != nil {
				return created, fmt.Errorf("seed comment: %w", err)
			}
			created++
		}
	}
	return created, nil
}

// Clear removes podcast data (comments, subscriptions, episodes, podcasts).
// Accounts are kept.
func (s *Seeder) Clear(ctx context.Context) error {
	episodes, err := s.repos.Episodes.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(episodes))
	for _, e := range episodes {
		ids = append(ids, e.ID)
	}
	if err := s.repos.Comments.DeleteByEpisodes(ctx, ids); err != nil {
		return fmt.Errorf("clear comments: %w", err)
	}

	podcasts, err := s.repos.Podcasts.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range podcasts {
		if err := s.repos.Podcasts.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("clear podcast %d: %w", p.ID, err)
		}
	}
	slog.Info("seed_cleared", "podcasts", len(podcasts), "episodes", len(episodes))
	return nil
}
