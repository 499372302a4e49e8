package prompt

import (
	"fmt"
	"strings"

	"github.com/akakura-hackathon/LocAIver/internal/story"
)

// Negative prompts for the two image paths.
const (
	NegativePortrait   = "multiple angle, split view, two shot, grid view"
	NegativeSceneImage = "collage, split screen, border, frame, duplicate, child, children"
)

// adultGuard keeps minors out of generated scenes regardless of what the
// depiction says.
const adultGuard = "Absolutely no individuals who appear under 21 years old. " +
	"Exclude children and teenagers entirely. Only depict adults with a clear, " +
	"mature, unmistakable age of 21 or older."

// Portrait builds the English image prompt for the character portrait from
// the translated character sheet.
func Portrait(ch story.Character) string {
	v := ch.VisualDesign
	return fmt.Sprintf(
		"An %s %s shot of a %d %s named %s, %s. "+
			"this person is %s. "+
			"this person has a height of %s with a %s build, %s hair, and %s. "+
			"this person is wearing a %s and carrying %s. "+
			"Do not create multiple frames or collage-style images, generate only one single coherent scene.",
		ch.Style, ch.Composition, int(ch.Age), ch.Sex, ch.Name, ch.Description,
		ch.Personality,
		v.Height, v.Build, v.HairStyle, v.EyeColor,
		v.ClothingStyle, ch.KeyItem)
}

// SceneImage builds the English image prompt for one scene from the
// translated scene document, the global style, and the orientation.
func SceneImage(sc story.Scene, style string, aspect story.Aspect) string {
	c := sc.Composition
	composition := fmt.Sprintf(
		"The scene is captured with %s from a %s. "+
			"The lighting is %s, and a %s mm lens is used. "+
			"The camera's focus is on %s. "+
			"The image style is %s. "+
			"The image should be in a %s format. %s",
		c.View, c.CameraAngle, c.Lighting, c.FocalLength, c.Focus,
		style, aspect.Ratio(), adultGuard)
	return strings.TrimSpace(fmt.Sprintf("%s. %s %s", sc.Depiction, composition, sc.OtherInformation))
}

// SceneImages builds the image prompt for every scene in order.
func SceneImages(set story.SceneSet, style string, aspect story.Aspect) []string {
	prompts := make([]string, 0, len(set.Scenes))
	for _, sc := range set.Scenes {
		prompts = append(prompts, SceneImage(sc, style, aspect))
	}
	return prompts
}

// Clip builds the English video prompt for one scene.
func Clip(sc story.Scene) string {
	c := sc.Composition
	return fmt.Sprintf(
		"Scene %d: %s Composition details: %s, %s, shot with %s lens, lighting: %s, focus: %s.",
		sc.SceneID, sc.Depiction, c.CameraAngle, c.View, c.FocalLength, c.Lighting, c.Focus)
}

// BGM builds the prompt that asks the text model to write a music-generation
// prompt for the story.
func BGM(storyText string) string {
	return fmt.Sprintf(`You are a creative assistant that generates prompts for AI music generation models.
Your task is not to create music directly, but to create detailed instructions that a music generation AI can understand.

Instructions:
1. Read the input text carefully.
2. Identify the key emotions, setting, and important events.
3. Convert these elements into a clear, concise, and creative instruction for a music AI.
4. Include any details that help the AI generate the appropriate music (tempo, instrumentation, mood).
5. Do not generate actual music, only the prompt text.

Input: A short story, scene description, or mood description.
Output: A music generation prompt that includes:
- The emotional tone or atmosphere (e.g., calm, cheerful, dramatic)
- The scene or setting
- Suggested instruments or musical style (optional)

Example:
    Input: "A sunset on a quiet beach, waves gently hitting the shore, a lone figure watching the horizon."
    Output: "An uplifting and hopeful orchestral piece with a soaring string melody and triumphant brass."

Input: %s`, storyText)
}

// SanitizeSystem instructs the text model to rewrite a rejected generation
// prompt into a guaranteed-safe one.
const SanitizeSystem = `You are a strict safety filter for video generation prompts.
Rewrite the input so it is ALWAYS safe and compliant.

Rules:
1. Detect and remove ALL sensitive, unsafe, or restricted content (violence, sex, drugs, crime, medical, politics, religion, discrimination, etc.).
2. Replace them with safe, neutral, and family-friendly alternatives such as nature, landscapes, objects, weather, abstract visuals, or daily life scenes.
3. Do NOT include emotional, psychological, or subjective descriptions.
4. Keep only concrete, visual, cinematic instructions that are guaranteed safe.
5. If the input is too unsafe, IGNORE it and instead return a generic safe prompt like 'A calm scene of nature with mountains and a river under a clear sky.'
6. Output ONLY the safe rewritten text, nothing else.`
