package redisrepo

import "fmt"

const (
	POST_KEY = "post:%d" // <postID>
	GLOBAL_FEED_KEY = "feed:global:%d" // <page>
	GROUP_FEED_KEY = "feed:group:%d:%d" // <groupID>:<page>
	AUTHOR_FEED_KEY = "feed:author:%s:%d" // <authorID>:<page>
	FOLLOWING_FEED_KEY = "feed:following:%s:%d" // <userID>:<page>
	USER_CACHE_KEY = "user-cache:%s" // <userID>
)

func PostKey(postID int64) string {
	return fmt.Sprintf(POST_KEY, postID)
}

func GlobalFeedKey(page int) string {
	return fmt.Sprintf(GLOBAL_FEED_KEY, page)
}

func GlobalFeedPattern() string {
	return "feed:global:*"
}

func GroupFeedKey(groupID int64, page int) string {
	return fmt.Sprintf(GROUP_FEED_KEY, groupID, page)
}

func GroupFeedPattern(groupID int64) string {
	return fmt.Sprintf("feed:group:%d:*", groupID)
}

func AuthorFeedKey(authorID string, page int) string {
	return fmt.Sprintf(AUTHOR_FEED_KEY, authorID, page)
}

func AuthorFeedPattern(authorID string) string {
	return fmt.Sprintf("feed:author:%s:*", authorID)
}

func FollowingFeedKey(userID string, page int) string {
	return fmt.Sprintf(FOLLOWING_FEED_KEY, userID, page)
}

func FollowingFeedPattern(userID string) string {
	return fmt.Sprintf("feed:following:%s:*", userID)
}

func AllFollowingFeedsPattern() string {
	return "feed:following:*"
}

func UserCacheKey(userID string) string {
	return fmt.Sprintf(USER_CACHE_KEY, userID)
}
