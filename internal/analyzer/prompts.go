package analyzer

import "fmt"

// 分析任务使用的系统提示词，按语言区分韩语和英语版本

// summaryPrompt 分块摘要提示词
func summaryPrompt(language string) string {
	if language == "ko" {
		return `당신은 문서 요약 전문가입니다. 주어진 텍스트를 3개의 문단으로 요약해주세요.

요약 규칙:
1. 첫 번째 문단: 문서의 주요 주제와 목적
2. 두 번째 문단: 핵심 내용과 주요 논점
3. 세 번째 문단: 결론이나 중요한 시사점

각 문단은 2-3문장으로 구성하고, 명확하고 간결하게 작성해주세요.`
	}
	return `You are a document summarization expert. Please summarize the given text in 3 paragraphs.

Summary rules:
1. First paragraph: Main topic and purpose of the document
2. Second paragraph: Key content and main arguments
3. Third paragraph: Conclusions or important implications

Each paragraph should be 2-3 sentences, written clearly and concisely.`
}

// finalSummaryPrompt 最终归并摘要提示词
func finalSummaryPrompt(language string) string {
	if language == "ko" {
		return `다음은 문서의 여러 부분을 요약한 내용들입니다. 이를 종합하여 전체 문서의 핵심을 3개 문단으로 요약해주세요.

요약 규칙:
1. 중복된 내용은 제거하고 핵심만 추출
2. 논리적 흐름을 유지하며 통합
3. 전체적인 맥락과 주요 메시지 강조`
	}
	return `The following are summaries of different parts of a document. Please synthesize them into a comprehensive 3-paragraph summary of the entire document.

Summary rules:
1. Remove redundant content and extract only the essentials
2. Maintain logical flow while integrating
3. Emphasize overall context and key messages`
}

// qaPrompt 问答对生成提示词
func qaPrompt(language string, numQuestions int) string {
	if language == "ko" {
		return fmt.Sprintf(`당신은 문서 분석 전문가입니다. 주어진 텍스트를 바탕으로 %d개의 질문과 답변을 생성해주세요.

규칙:
1. 문서의 핵심 내용을 다루는 질문 생성
2. 답변은 문서 내용에 근거하여 정확하게 작성
3. 다양한 유형의 질문 포함 (사실, 분석, 해석)
4. 다음 형식으로 작성:

Q1: [질문]
A1: [답변]

Q2: [질문]
A2: [답변]

...계속`, numQuestions)
	}
	return fmt.Sprintf(`You are a document analysis expert. Based on the given text, generate %d questions and answers.

Rules:
1. Create questions that cover key content of the document
2. Answers should be accurate and based on document content
3. Include various types of questions (factual, analytical, interpretive)
4. Format as follows:

Q1: [Question]
A1: [Answer]

Q2: [Question]
A2: [Answer]

...continue`, numQuestions)
}

// keywordPrompt 关键词提取提示词
func keywordPrompt(language string, maxKeywords int) string {
	if language == "ko" {
		return fmt.Sprintf(`주어진 텍스트에서 가장 중요한 키워드 %d개를 추출해주세요.

규칙:
1. 문서의 핵심 주제를 나타내는 단어/구문 선택
2. 중요도 순으로 정렬
3. 다음 형식으로 작성:

1. [키워드] - [중요도: 높음/중간/낮음]
2. [키워드] - [중요도: 높음/중간/낮음]
...계속`, maxKeywords)
	}
	return fmt.Sprintf(`Extract the %d most important keywords from the given text.

Rules:
1. Select words/phrases that represent key topics of the document
2. Sort by importance
3. Format as follows:

1. [Keyword] - [Importance: High/Medium/Low]
2. [Keyword] - [Importance: High/Medium/Low]
...continue`, maxKeywords)
}

// sentencesPrompt 核心句提取提示词
func sentencesPrompt(language string, maxSentences int) string {
	if language == "ko" {
		return fmt.Sprintf(`주어진 텍스트에서 가장 중요한 문장 %d개를 선택해주세요.

규칙:
1. 문서의 핵심 메시지를 담은 문장 선택
2. 중요도 순으로 정렬
3. 원문 그대로 인용
4. 다음 형식으로 작성:

1. "[문장]" - [중요도: 높음/중간/낮음]
2. "[문장]" - [중요도: 높음/중간/낮음]
...계속`, maxSentences)
	}
	return fmt.Sprintf(`Select the %d most important sentences from the given text.

Rules:
1. Choose sentences that contain key messages of the document
2. Sort by importance
3. Quote exactly from the original text
4. Format as follows:

1. "[Sentence]" - [Importance: High/Medium/Low]
2. "[Sentence]" - [Importance: High/Medium/Low]
...continue`, maxSentences)
}
