package domain

// Kind 是 nature 变体的稳定标识（也是 memory 中 destination 映射的 key）。
//
// 约束：标识一旦发布就不能改名，否则已持久化的 memory 会全部失效。
type Kind string

const (
	KindTVShowEpisode    Kind = "tv_show_episode"
	KindTVShowContainer  Kind = "tv_show_container"
	KindTVShowFolder     Kind = "tv_show_folder"
	KindMovieFile        Kind = "movie_file"
	KindMovieFolder      Kind = "movie_folder"
	KindMusicAlbum       Kind = "music_album"
	KindMusicCompilation Kind = "music_compilation"
	KindUnknown          Kind = "unknown"
)

var kindNames = map[Kind]string{
	KindTVShowEpisode:    "剧集文件",
	KindTVShowContainer:  "包含单集的文件夹",
	KindTVShowFolder:     "剧集文件夹（含字幕）",
	KindMovieFile:        "电影文件",
	KindMovieFolder:      "电影文件夹",
	KindMusicAlbum:       "音乐专辑",
	KindMusicCompilation: "音乐合辑",
	KindUnknown:          "未知",
}

// DisplayName 返回给用户看的名称；未知 Kind 原样返回。
func (k Kind) DisplayName() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return string(k)
}

// ParseKind 校验并解析 Kind 标识。
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kindNames[k]
	return k, ok
}

// IsShow 表示该 Kind 是否按“剧名/季”组织。
func (k Kind) IsShow() bool {
	switch k {
	case KindTVShowEpisode, KindTVShowContainer, KindTVShowFolder:
		return true
	default:
		return false
	}
}
