// Package seed fills a development database with plausible local
// community data: users, artists, posts, comment threads, polls with
// anonymous votes, subscriptions, bookings and notifications.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/polls"
)

var cities = []string{"Indore", "Bhopal", "Jaipur", "Pune", "Nagpur"}

var artistCategories = []string{"musician", "comedian", "photographer", "dancer", "magician"}

// Seeder handles database seeding operations
type Seeder struct {
	db         *gorm.DB
	voteSecret []byte

	users   []*models.User
	artists []*models.User
	posts   []*models.Post
}

// NewSeeder creates a new seeder instance. The vote secret must match
// the server's so seeded ballots stay consistent with live voting.
func NewSeeder(db *gorm.DB, voteSecret []byte) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, voteSecret: voteSecret}
}

// SeedDev populates a development dataset. Idempotence is not a goal;
// run against a fresh database.
func (s *Seeder) SeedDev() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"users", func() error { return s.seedUsers(40, 8) }},
		{"posts", func() error { return s.seedPosts(120) }},
		{"comments", func() error { return s.seedComments(300) }},
		{"likes", func() error { return s.seedLikes(400) }},
		{"polls", func() error { return s.seedPolls(15) }},
		{"subscriptions", func() error { return s.seedSubscriptions(80) }},
		{"bookings", func() error { return s.seedBookings(25) }},
	}

	for _, step := range steps {
		start := time.Now()
		if err := step.fn(); err != nil {
			return fmt.Errorf("seeding %s: %w", step.name, err)
		}
		logger.Log.Info("Seeded",
			zap.String("step", step.name),
			zap.Duration("took", time.Since(start)))
	}
	return nil
}

// SeedTest populates a minimal dataset for integration testing.
func (s *Seeder) SeedTest() error {
	if err := s.seedUsers(4, 2); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	if err := s.seedPosts(10); err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if err := s.seedPolls(3); err != nil {
		return fmt.Errorf("seeding polls: %w", err)
	}
	logger.Log.Info("Test dataset seeded",
		zap.Int("users", len(s.users)),
		zap.Int("posts", len(s.posts)))
	return nil
}

func (s *Seeder) seedUsers(regular, artistCount int) error {
	// One well-known login for manual testing
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)

	demo := &models.User{
		Email:         "demo@glocal.local",
		Username:      "demo",
		DisplayName:   "Demo User",
		City:          cities[0],
		PasswordHash:  &hashStr,
		EmailVerified: true,
	}
	if err := s.db.Create(demo).Error; err != nil {
		return err
	}
	s.users = append(s.users, demo)

	for i := 0; i < regular+artistCount; i++ {
		city := cities[rand.Intn(len(cities))]
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := &models.User{
			Email:         fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Username:      username,
			DisplayName:   gofakeit.Name(),
			Bio:           gofakeit.Sentence(12),
			City:          city,
			Area:          gofakeit.StreetName(),
			PasswordHash:  &hashStr,
			EmailVerified: true,
			AvatarURL:     fmt.Sprintf("https://i.pravatar.cc/256?u=%s", username),
		}
		if i >= regular {
			user.IsArtist = true
			user.ArtistCategory = artistCategories[rand.Intn(len(artistCategories))]
			user.HourlyRateMin = int64(gofakeit.Number(500, 10000)) * 100
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		s.users = append(s.users, user)
		if user.IsArtist {
			s.artists = append(s.artists, user)
		}
	}
	return nil
}

func (s *Seeder) seedPosts(count int) error {
	for i := 0; i < count; i++ {
		author := s.users[rand.Intn(len(s.users))]
		post := &models.Post{
			UserID:    author.ID,
			Type:      models.PostTypePost,
			Title:     gofakeit.Sentence(6),
			Body:      gofakeit.Paragraph(2, 4, 10, "\n"),
			City:      author.City,
			Area:      author.Area,
			Status:    models.PostStatusActive,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		// Roughly a fifth of posts are events
		if rand.Intn(5) == 0 {
			eventDate := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 2, 0))
			post.Type = models.PostTypeEvent
			post.EventDate = &eventDate
			post.Venue = gofakeit.Company() + " Hall"
		}
		if err := s.db.Create(post).Error; err != nil {
			return err
		}
		s.posts = append(s.posts, post)

		if err := s.db.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedComments(count int) error {
	for i := 0; i < count; i++ {
		post := s.posts[rand.Intn(len(s.posts))]
		commenter := s.users[rand.Intn(len(s.users))]
		comment := &models.Comment{
			PostID:    post.ID,
			UserID:    commenter.ID,
			Content:   gofakeit.Sentence(gofakeit.Number(5, 20)),
			CreatedAt: gofakeit.DateRange(post.CreatedAt, time.Now()),
		}
		if err := s.db.Create(comment).Error; err != nil {
			return err
		}
		if err := s.db.Model(post).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedLikes(count int) error {
	for i := 0; i < count; i++ {
		post := s.posts[rand.Intn(len(s.posts))]
		liker := s.users[rand.Intn(len(s.users))]

		like := models.PostLike{PostID: post.ID, UserID: liker.ID}
		if err := s.db.Create(&like).Error; err != nil {
			// Duplicate (post, user) pairs happen; skip them
			continue
		}
		if err := s.db.Model(post).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedPolls(count int) error {
	questions := []string{
		"Where should the new community park go?",
		"What time should the weekly market open?",
		"Which road needs repair first?",
		"Best spot for the food festival?",
		"Should the library stay open on Sundays?",
	}

	for i := 0; i < count; i++ {
		author := s.users[rand.Intn(len(s.users))]
		poll := &models.Poll{
			UserID:   author.ID,
			Question: questions[rand.Intn(len(questions))],
			City:     author.City,
		}
		if rand.Intn(3) == 0 {
			expiry := time.Now().AddDate(0, 0, gofakeit.Number(1, 30))
			poll.ExpiresAt = &expiry
		}
		optionCount := gofakeit.Number(2, 4)
		for j := 0; j < optionCount; j++ {
			poll.Options = append(poll.Options, models.PollOption{
				Text:     gofakeit.Sentence(3),
				Position: j,
			})
		}
		if err := s.db.Create(poll).Error; err != nil {
			return err
		}

		if err := s.seedVotes(poll); err != nil {
			return err
		}
	}
	return nil
}

// seedVotes casts ballots through the same derivation the vote endpoint
// uses, so seeded rows are indistinguishable from real ones.
func (s *Seeder) seedVotes(poll *models.Poll) error {
	voterCount := gofakeit.Number(0, len(s.users)/2)
	voters := rand.Perm(len(s.users))[:voterCount]

	for _, idx := range voters {
		voter := s.users[idx]
		option := poll.Options[rand.Intn(len(poll.Options))]

		token, err := polls.DeriveVotingToken(voter.ID, poll.ID, s.voteSecret)
		if err != nil {
			return err
		}
		anonID, err := polls.DeriveAnonymousVoterID(token)
		if err != nil {
			return err
		}

		vote := models.PollVote{
			PollID:      poll.ID,
			OptionID:    option.ID,
			VoterHash:   token,
			AnonVoterID: anonID,
		}
		if err := s.db.Create(&vote).Error; err != nil {
			return err
		}
		if err := s.db.Model(&models.PollOption{}).Where("id = ?", option.ID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
			return err
		}
		if err := s.db.Model(poll).
			UpdateColumn("total_votes", gorm.Expr("total_votes + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedSubscriptions(count int) error {
	if len(s.artists) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		artist := s.artists[rand.Intn(len(s.artists))]
		fan := s.users[rand.Intn(len(s.users))]
		if fan.ID == artist.ID {
			continue
		}

		sub := models.ArtistSubscription{ArtistID: artist.ID, SubscriberID: fan.ID}
		if err := s.db.Create(&sub).Error; err != nil {
			continue
		}
		if err := s.db.Model(&models.User{}).Where("id = ?", artist.ID).
			UpdateColumn("subscriber_count", gorm.Expr("subscriber_count + 1")).Error; err != nil {
			return err
		}

		notif := models.Notification{
			UserID:  artist.ID,
			ActorID: &fan.ID,
			Type:    models.NotificationSubscription,
			Title:   fan.DisplayName + " subscribed to your updates",
		}
		if err := s.db.Create(&notif).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedBookings(count int) error {
	if len(s.artists) == 0 {
		return nil
	}
	statuses := []models.BookingStatus{
		models.BookingPending, models.BookingPending,
		models.BookingAccepted, models.BookingDeclined, models.BookingCompleted,
	}

	for i := 0; i < count; i++ {
		artist := s.artists[rand.Intn(len(s.artists))]
		client := s.users[rand.Intn(len(s.users))]
		if client.ID == artist.ID {
			continue
		}

		status := statuses[rand.Intn(len(statuses))]
		booking := models.Booking{
			ArtistID:  artist.ID,
			ClientID:  client.ID,
			EventDate: gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 3, 0)),
			Venue:     gofakeit.Company() + ", " + artist.City,
			Note:      gofakeit.Sentence(10),
			Status:    status,
		}
		if status == models.BookingAccepted || status == models.BookingCompleted {
			booking.QuotedAmount = int64(gofakeit.Number(500, 10000)) * 100
		}
		if err := s.db.Create(&booking).Error; err != nil {
			return err
		}

		notif := models.Notification{
			UserID:     artist.ID,
			ActorID:    &client.ID,
			Type:       models.NotificationBooking,
			Title:      client.DisplayName + " requested a booking",
			TargetType: "booking",
			TargetID:   booking.ID,
		}
		if err := s.db.Create(&notif).Error; err != nil {
			return err
		}
	}
	return nil
}
