package prompt

import (
	"fmt"
	"strings"

	"github.com/akakura-hackathon/LocAIver/internal/story"
)

const storySchema = `{
    "subject": "映像の主題やテーマを簡潔に記述（20文字以内）",
    "story": "映像全体の物語やコンセプトを100〜200文字程度でまとめ、絵コンテ化しやすい具体性を持たせる",
    "style": "映像の表現スタイルを5〜15文字程度で記述（例: ドキュメンタリー風、シネマティックなど）",
    "quality_modifiers": "演出強調要素をカンマ区切りで3〜5個列挙（例: 温かみのある光、ドローン空撮など）",
    "negative_prompt": "避けるべき要素やNGな表現を簡潔に記述（例: ネガティブな描写、都会的すぎる映像）"
}`

// StoryExtraction builds the prompt that turns the interview transcript into
// the story document. For narration-mode projects the story must not
// introduce any person.
func StoryExtraction(history []story.ChatMessage, withCharacter bool) string {
	var transcript []string
	for _, m := range history {
		body := strings.TrimSpace(m.Body())
		if body == "" {
			continue
		}
		if m.Role == "user" {
			transcript = append(transcript, "User: "+body)
		} else {
			transcript = append(transcript, "Assistant: "+body)
		}
	}

	noCharacter := ""
	if !withCharacter {
		noCharacter = "storyには絶対に登場人物を登場させてはいけない。\n"
	}

	return fmt.Sprintf(`あなたはプロの地方創生映像プロデューサーです。
以下にユーザとの会話履歴があります。この会話は、ユーザがどのような地方創生映像を作りたいかについての相談内容です。

タスク:
会話履歴を読み取り、ユーザが希望する地方創生映像のコンセプトを抽出する。
抽出した内容を必ず有効なJSON形式に変換し、前後に解説文や補足を加えず出力する。
このJSONは絵コンテ生成のベースとして直接利用されるため、映像イメージが具体的に想起できるように記述すること。
会話から情報が不足している場合は、文脈に沿ったもっともらしい内容を補完して埋めること。
%s各フィールドは必ず出力すること。

厳守事項：
"story"の値に「子供」や「孫」などのワードを絶対に含めてはいけない。

出力フォーマット:
%s

入力:
%s

出力: JSON`, noCharacter, storySchema, strings.Join(transcript, "\n"))
}

// CharacterExtraction builds the prompt that derives the character sheet
// from the story document (passed as raw JSON).
func CharacterExtraction(storyJSON string) string {
	return fmt.Sprintf(`あなたはプロのキャラクターデザイナーです。
以下に地方創生映像のストーリーを含むJSON（subject, story, style, …）があります。
このストーリーに登場させる人物を1人設計し、必ず有効なJSON形式のみで出力してください。

厳守事項:
- 出力はJSONのみで、前後に解説文や補足を絶対に加えないこと。
- "age": "年齢" は必ず20以上の値にすること。

出力フォーマット:
{
    "name": "人物名（日本語）",
    "sex": "性別",
    "age": "年齢",
    "description": "人物の背景や役割を簡潔に記述",
    "personality": "性格や価値観を簡潔に記述",
    "visual_design": {
        "height": "身長",
        "build": "体格",
        "hair_style": "髪型",
        "eye_color": "瞳の色",
        "clothing_style": "服装"
    },
    "key_item": "人物に紐づく象徴的なアイテム",
    "style": "ビジュアルスタイル（例: アニメ、リアル調など）",
    "character_composition": "絵コンテ用の構図（例: 全身、バストアップ、顔アップなど）"
}

入力: %s
出力: JSON`, storyJSON)
}

// SceneSplit builds the prompt that divides the story text into exactly four
// storyboard scenes.
func SceneSplit(storyText string) string {
	return fmt.Sprintf(`あなたの役割は、与えられた日本語の物語をもとに、4つのシーンに分割し、指定されたJSON形式で出力することです。

厳守事項:
- 出力はJSON形式のみで、余計な文字・説明を絶対に含めないこと。
- 各シーンには以下のキーを必ず含めること。
- scene_id: 1から始まる連番
- depiction: シーン全体の描写（自然な文章）、ここに「子供」や「孫」、といったワードを含めることは許されない
- composition: カメラ的な構図情報を含むオブジェクト
    - camera_angle
    - view
    - focal_length
    - lighting
    - focus
- dialogue: 会話がある場合は配列形式で {"character": "", "line": ""} を複数入れる。会話がない場合は空配列。
- other_information: 必ず文字列のみを値とし、リストや別オブジェクトは禁止。

足りない情報は物語の文脈に合うように自然に補完してください。

出力フォーマット（厳守）:
{
"scenes": [
    {
    "scene_id": 1,
    "depiction": "",
    "composition": {
        "camera_angle": "",
        "view": "",
        "focal_length": "",
        "lighting": "",
        "focus": ""
    },
    "dialogue": [
        {
        "character": "",
        "line": ""
        }
    ],
    "other_information": ""
    },
    ...
]
}

物語本文:
---
%s
---`, storyText)
}

// SceneRevision builds the prompt that rewrites one scene of the full scene
// document according to the user's revision note. The model returns the
// whole document; untouched slots are restored from the prior version by the
// caller.
func SceneRevision(sceneID int, sceneJSON, revisionNote string) string {
	return fmt.Sprintf(`あなたの役割は、入力されたJSONデータのうち、scene_id が %d のシーンを修正することです。

厳守事項:
- 出力は入力JSON全体を返してください（修正対象以外のシーンもそのまま含めてください）。
- JSON以外の文字、説明文、記号を絶対に含めないでください。
- JSONの構造は保持してください。不要な削除や追加は行わず、必要な修正のみを加えてください。
- 修正内容は「revision_contents」を解釈し、どのキーに対応するかを自律的に判断してください。
- 修正は物語全体の文脈を考慮し、一貫性を保ってください。

入力JSON:
---
%s
---

修正内容（revision_contents）:
---
%s
---

出力:
修正済みのJSON全体（入力と同じフォーマットの完全なJSON）を返してください。`,
		sceneID, sceneJSON, revisionNote)
}

// Translate builds the prompt that translates every value of a JSON
// document into English while preserving its structure.
func Translate(docJSON string) string {
	return fmt.Sprintf(`以下のjsonの値を英語に翻訳して出力してください

json本体:
---
%s
---

返すのはjsonのフォーマットで、そのデータだけを返してください。`, docJSON)
}
