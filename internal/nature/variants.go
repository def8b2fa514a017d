package nature

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/episode"
	"github.com/John-Robertt/organizer/internal/scan"
)

// 打分规则需要和历史版本逐位一致：分数必须在运行时按固定顺序累加
// （例如剧集文件夹 0.2+0.4+0.2-0.1 在浮点下略大于电影文件夹的 0.4+0.3，剧集因此胜出）。
// 不要把这些加法改写成常量表达式，Go 会按精确值折叠常量，平局结果就变了。

var variousArtistsRE = regexp.MustCompile(`(?i)^(VA[._-]|Various[._-]Artists)`)

func tvShowEpisode() Variant {
	return Variant{
		Kind:    domain.KindTVShowEpisode,
		Examine: examineEpisodeFile,
		Build: func(path string, confidence float64) (domain.Nature, error) {
			return showNature(domain.KindTVShowEpisode, path, path, confidence), nil
		},
	}
}

func examineEpisodeFile(path string) float64 {
	score := 0.0
	if !scan.IsVideoExt(filepath.Ext(path)) {
		return score
	}
	score += 0.2
	if _, ok := episode.Parse(filepath.Base(path)); ok {
		score += 0.6
	}
	return score
}

func tvShowContainer() Variant {
	return Variant{
		Kind:    domain.KindTVShowContainer,
		Examine: examineContainer,
		Build: func(path string, confidence float64) (domain.Nature, error) {
			video, err := singleVideo(path)
			if err != nil {
				return domain.Nature{}, err
			}
			return showNature(domain.KindTVShowContainer, path, video, confidence), nil
		},
	}
}

func examineContainer(path string) float64 {
	score := 0.0
	videos := scan.Videos(path)
	if len(videos) != 1 {
		return score
	}
	score += 0.2
	if _, ok := episode.Parse(filepath.Base(videos[0])); ok {
		score += 0.4
	}
	return score
}

func tvShowFolder() Variant {
	return Variant{
		Kind: domain.KindTVShowFolder,
		Examine: func(path string) float64 {
			score := examineContainer(path)
			if len(scan.Subtitles(path)) > 0 {
				score += 0.2
			}
			return score - 0.1
		},
		Build: func(path string, confidence float64) (domain.Nature, error) {
			video, err := singleVideo(path)
			if err != nil {
				return domain.Nature{}, err
			}
			// 整个文件夹（视频+字幕）一起移动；剧名/季仍取自里面唯一的视频。
			n := showNature(domain.KindTVShowFolder, path, path, confidence)
			applyEpisode(&n, filepath.Base(video))
			return n, nil
		},
	}
}

func movieFile() Variant {
	return Variant{
		Kind: domain.KindMovieFile,
		Examine: func(path string) float64 {
			score := 0.0
			if !scan.IsVideoExt(filepath.Ext(path)) {
				return score
			}
			score += 0.5
			return score
		},
		Build: func(path string, confidence float64) (domain.Nature, error) {
			return plainNature(domain.KindMovieFile, path, confidence), nil
		},
	}
}

func movieFolder() Variant {
	return Variant{
		Kind: domain.KindMovieFolder,
		Examine: func(path string) float64 {
			score := 0.0
			n := len(scan.Videos(path))
			if n != 1 && n != 2 {
				return score
			}
			score = 0.4
			if len(scan.Subtitles(path)) > 0 {
				score = score + 0.3
			}
			return score
		},
		Build: func(path string, confidence float64) (domain.Nature, error) {
			return plainNature(domain.KindMovieFolder, path, confidence), nil
		},
	}
}

func musicAlbum() Variant {
	return Variant{
		Kind:    domain.KindMusicAlbum,
		Examine: examineAlbum,
		Build: func(path string, confidence float64) (domain.Nature, error) {
			return plainNature(domain.KindMusicAlbum, path, confidence), nil
		},
	}
}

// examineAlbum 每个音乐文件加 0.2，分数达到 0.7 后不再增加（上限约 0.8）。
func examineAlbum(path string) float64 {
	score := 0.0
	for range scan.MusicFiles(path) {
		if score < 0.7 {
			score = score + 0.2
		}
	}
	return score
}

func musicCompilation() Variant {
	return Variant{
		Kind: domain.KindMusicCompilation,
		Examine: func(path string) float64 {
			score := examineAlbum(path)
			if score >= 0.05 {
				score = score - 0.05
				if variousArtistsRE.MatchString(filepath.Base(path)) {
					score = score + 0.1
				}
			}
			return score
		},
		Build: func(path string, confidence float64) (domain.Nature, error) {
			return plainNature(domain.KindMusicCompilation, path, confidence), nil
		},
	}
}

func unknown() Variant {
	return Variant{
		Kind:    domain.KindUnknown,
		Examine: func(string) float64 { return 0.01 },
		Build: func(path string, confidence float64) (domain.Nature, error) {
			return plainNature(domain.KindUnknown, path, confidence), nil
		},
	}
}

// singleVideo 重新确认容器里恰好只有一个视频。
func singleVideo(folder string) (string, error) {
	videos := scan.Videos(folder)
	if len(videos) != 1 {
		return "", fmt.Errorf("%s：期望恰好 1 个视频文件，实际 %d 个（目录在分类期间被修改？）", folder, len(videos))
	}
	return videos[0], nil
}

func baseProperties(toOrganize string) map[string]string {
	name := filepath.Base(toOrganize)
	return map[string]string{
		"filename": name,
		"stem":     strings.TrimSuffix(name, filepath.Ext(name)),
	}
}

func plainNature(kind domain.Kind, path string, confidence float64) domain.Nature {
	return domain.Nature{
		Kind:           kind,
		Path:           path,
		PathToOrganize: path,
		Confidence:     confidence,
		Properties:     baseProperties(path),
		Schemes:        []domain.Scheme{{Template: "{{ filename }}", Mode: domain.ModeExact}},
	}
}

// showNature 构造剧集类 nature；剧名/季从 PathToOrganize 的文件名解析。
func showNature(kind domain.Kind, path, toOrganize string, confidence float64) domain.Nature {
	n := domain.Nature{
		Kind:           kind,
		Path:           path,
		PathToOrganize: toOrganize,
		Confidence:     confidence,
		Properties:     baseProperties(toOrganize),
	}
	applyEpisode(&n, filepath.Base(toOrganize))
	return n
}

// applyEpisode 用 source 文件名解析出的季集信息补齐属性与默认模板。
// 解析失败时退化为“以 stem 作为唯一一级目录”。
func applyEpisode(n *domain.Nature, source string) {
	m, ok := episode.Parse(source)
	if !ok {
		delete(n.Properties, "showname")
		delete(n.Properties, "season")
		delete(n.Properties, "episode")
		n.Schemes = []domain.Scheme{
			{Template: "{{ stem }}", Mode: domain.ModeSpeculative},
			{Template: "{{ filename }}", Mode: domain.ModeExact},
		}
		return
	}
	n.Properties["showname"] = m.ShowName
	n.Properties["season"] = m.Season
	n.Properties["episode"] = m.Episode
	n.Schemes = []domain.Scheme{
		{Template: "{{ showname }}", Mode: domain.ModeSpeculative},
		{Template: "Season {{ season }}", Mode: domain.ModeExact},
		{Template: "{{ filename }}", Mode: domain.ModeExact},
	}
}
