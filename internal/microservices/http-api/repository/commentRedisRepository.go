package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"podcasthub/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

// Key layout:
//
//	comment:seq                  INCR counter for ids
//	comment:{id}                 hash with the comment fields
//	comments:episode:{episodeID} sorted set of ids scored by comment date (unix nanos)
//	comments:all                 sorted set of every id, same score
const (
	commentSeqKey  = "comment:seq"
	commentAllKey  = "comments:all"
	commentKeyFmt  = "comment:%d"
	episodeKeyFmt  = "comments:episode:%d"
	redisTimestamp = time.RFC3339Nano
)

type commentRedisRepository struct {
	client *redis.Client
}

// NewCommentRedisRepository stores comments in Redis hashes. It shares the
// CommentRepository contract with the Postgres store.
func NewCommentRedisRepository(client *redis.Client) CommentRepository {
	return &commentRedisRepository{client: client}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func commentKey(id int64) string         { return fmt.Sprintf(commentKeyFmt, id) }
func episodeCommentsKey(id int64) string { return fmt.Sprintf(episodeKeyFmt, id) }

func (r *commentRedisRepository) Create(ctx context.Context, comment *models.Comment) error {
	id, err := r.client.Incr(ctx, commentSeqKey).Result()
	if err != nil {
		return fmt.Errorf("allocate comment id: %w", err)
	}
	comment.ID = id
	if comment.CommentDate.IsZero() {
		comment.CommentDate = time.Now().UTC()
	}

	fields := map[string]any{
		"id":           comment.ID,
		"episode_id":   comment.EpisodeID,
		"user_id":      comment.UserID,
		"comment_text": comment.Text,
		"comment_date": comment.CommentDate.Format(redisTimestamp),
	}
	score := float64(comment.CommentDate.UnixNano())

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, commentKey(id), fields)
		pipe.ZAdd(ctx, episodeCommentsKey(comment.EpisodeID), redis.Z{Score: score, Member: id})
		pipe.ZAdd(ctx, commentAllKey, redis.Z{Score: score, Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// updateTextScript only writes into an existing hash, so an edit racing a
// delete cannot leave a partial comment behind. Returns 0 when the key is gone.
var updateTextScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "comment_text", ARGV[1])
return 1
`)

func (r *commentRedisRepository) UpdateText(ctx context.Context, id int64, text string) error {
	updated, err := updateTextScript.Run(ctx, r.client, []string{commentKey(id)}, text).Int()
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("update comment: %w", ErrNotFound)
	}
	return nil
}

func (r *commentRedisRepository) Delete(ctx context.Context, id int64) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, commentKey(id))
		pipe.ZRem(ctx, episodeCommentsKey(c.EpisodeID), id)
		pipe.ZRem(ctx, commentAllKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (r *commentRedisRepository) DeleteByEpisodes(ctx context.Context, episodeIDs []int64) error {
	for _, episodeID := range episodeIDs {
		ids, err := r.client.ZRange(ctx, episodeCommentsKey(episodeID), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("delete episode comments: %w", err)
		}
		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range ids {
				pipe.Del(ctx, "comment:"+id)
				pipe.ZRem(ctx, commentAllKey, id)
			}
			pipe.Del(ctx, episodeCommentsKey(episodeID))
			return nil
		})
		if err != nil {
			return fmt.Errorf("delete episode comments: %w", err)
		}
	}
	return nil
}

func (r *commentRedisRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	fields, err := r.client.HGetAll(ctx, commentKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("get comment: %w", ErrNotFound)
	}
	return parseCommentHash(fields)
}

func (r *commentRedisRepository) ListByEpisode(ctx context.Context, episodeID int64) ([]models.Comment, error) {
	return r.listSet(ctx, episodeCommentsKey(episodeID))
}

func (r *commentRedisRepository) ListByEpisodes(ctx context.Context, episodeIDs []int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	for _, episodeID := range episodeIDs {
		list, err := r.listSet(ctx, episodeCommentsKey(episodeID))
		if err != nil {
			return nil, err
		}
		comments = append(comments, list...)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CommentDate.After(comments[j].CommentDate)
	})
	return comments, nil
}

func (r *commentRedisRepository) ListAll(ctx context.Context) ([]models.Comment, error) {
	return r.listSet(ctx, commentAllKey)
}

func (r *commentRedisRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.client.ZCard(ctx, commentAllKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// listSet loads every hash referenced by a sorted set, newest first. Ids whose
// hash has gone missing are skipped.
func (r *commentRedisRepository) listSet(ctx context.Context, setKey string) ([]models.Comment, error) {
	ids, err := r.client.ZRevRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments := make([]models.Comment, 0, len(ids))
	if len(ids) == 0 {
		return comments, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, "comment:"+id)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	for _, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		c, err := parseCommentHash(fields)
		if err != nil {
			continue
		}
		comments = append(comments, *c)
	}
	return comments, nil
}

func parseCommentHash(fields map[string]string) (*models.Comment, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid comment id %q: %w", fields["id"], err)
	}
	episodeID, err := strconv.ParseInt(fields["episode_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid episode_id for comment %d: %w", id, err)
	}
	postedAt, err := time.Parse(redisTimestamp, fields["comment_date"])
	if err != nil {
		return nil, fmt.Errorf("invalid comment_date for comment %d: %w", id, err)
	}
	return &models.Comment{
		ID:          id,
		EpisodeID:   episodeID,
		UserID:      fields["user_id"],
		Text:        fields["comment_text"],
		CommentDate: postedAt,
	}, nil
}
